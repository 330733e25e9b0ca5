package pairing

// CodeResponse mirrors the pair-code endpoint payload.
type CodeResponse struct {
	Data CodeData `json:"data"`
}

// CodeData carries the issued code.
type CodeData struct {
	Code string `json:"code"`
}
