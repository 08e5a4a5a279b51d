package domain

// FixedGamePoints is claimed for every round regardless of how the round went.
const FixedGamePoints = 2000

const (
	messageGameNotFinished = "game session not finished"
	messageGameNotFound    = "game session not found"
	messageTokenInvalid    = "Token is invalid"
)

type GameSession struct {
	ID     string
	Points int
}

type ClaimOutcome int

const (
	ClaimFinished ClaimOutcome = iota
	ClaimNotFinished
	ClaimSessionNotFound
	ClaimTokenInvalid
)

func (o ClaimOutcome) String() string {
	switch o {
	case ClaimNotFinished:
		return "not_finished"
	case ClaimSessionNotFound:
		return "session_not_found"
	case ClaimTokenInvalid:
		return "token_invalid"
	default:
		return "finished"
	}
}

// ClaimResult is either a server message or a successful claim payload.
type ClaimResult struct {
	Message string
	Payload string
}

func (r ClaimResult) Outcome() ClaimOutcome {
	return ClassifyClaim(r.Message)
}

func ClassifyClaim(message string) ClaimOutcome {
	switch message {
	case messageGameNotFinished:
		return ClaimNotFinished
	case messageGameNotFound:
		return ClaimSessionNotFound
	case messageTokenInvalid:
		return ClaimTokenInvalid
	default:
		return ClaimFinished
	}
}
