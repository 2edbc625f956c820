package stream

// State is the position of an entity frame in the parse.
type State int

// The states an entity moves through.
const (
	AwaitingHeaders State = iota
	InHeaders
	AwaitingBody
	InSimpleBody
	InPreamble
	InPart
	InEpilogue
	Done
	Failed
)

var stateNames = [...]string{
	"awaiting headers",
	"in headers",
	"awaiting body",
	"in simple body",
	"in preamble",
	"in part",
	"in epilogue",
	"done",
	"failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
