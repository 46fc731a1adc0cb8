package usecases

import (
	"context"

	"pharos/internal/application/subject/dto"
)

type CreateSubjectExecutor interface {
	Execute(ctx context.Context, cmd CreateSubjectCommand) (*CreateSubjectResult, error)
}

type GetSubjectExecutor interface {
	Execute(ctx context.Context, query GetSubjectQuery) (*dto.SubjectDTO, error)
}

type UpdateSubjectExecutor interface {
	Execute(ctx context.Context, cmd UpdateSubjectCommand) (*UpdateSubjectResult, error)
}

type SearchSubjectsExecutor interface {
	Execute(ctx context.Context, query SearchSubjectsQuery) (*SearchSubjectsResult, error)
}

type SoftDeleteSubjectExecutor interface {
	Execute(ctx context.Context, cmd SoftDeleteSubjectCommand) error
}
