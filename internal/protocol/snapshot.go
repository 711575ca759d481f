package protocol

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type RunSummary struct {
	RopeLength int   `json:"ropeLength"`
	Steps      int   `json:"steps"`
	Visited    int   `json:"visited"`
	Head       Point `json:"head"`
	Tail       Point `json:"tail"`
}
