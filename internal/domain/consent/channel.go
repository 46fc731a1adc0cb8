package consent

// Channel is an engagement medium for which consent is tracked independently.
type Channel string

const (
	ChannelEmail           Channel = "email"
	ChannelPhone           Channel = "phone"
	ChannelVisit           Channel = "visit"
	ChannelRemoteDetailing Channel = "remote_detailing"
	ChannelDataProcessing  Channel = "data_processing"
	ChannelMarketing       Channel = "marketing"
)

// Channels lists every tracked channel.
func Channels() []Channel {
	return []Channel{
		ChannelEmail,
		ChannelPhone,
		ChannelVisit,
		ChannelRemoteDetailing,
		ChannelDataProcessing,
		ChannelMarketing,
	}
}

func (c Channel) String() string {
	return string(c)
}

func (c Channel) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelPhone, ChannelVisit, ChannelRemoteDetailing,
		ChannelDataProcessing, ChannelMarketing:
		return true
	}
	return false
}
