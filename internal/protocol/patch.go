package protocol

const (
	PatchRopeStepped  = "RopeStepped"
	PatchRunCompleted = "RunCompleted"
	PatchRunFailed    = "RunFailed"
)

type PatchEnvelope struct {
	Sequence uint64 `json:"seq"`
	RunID    uint64 `json:"runId"`
	Type     string `json:"type"`
	Payload  any    `json:"payload"`
}

type RopeStepped struct {
	Step      int     `json:"step"`
	Line      int     `json:"line"`
	Direction string  `json:"direction"`
	Segments  []Point `json:"segments"`
	Visited   int     `json:"visited"`
	NewVisit  bool    `json:"newVisit"`
}

type RunCompleted struct {
	Summary RunSummary `json:"summary"`
}

type RunFailed struct {
	Line    int    `json:"line,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}
