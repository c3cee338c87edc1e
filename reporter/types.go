package reporter

type JSONClaimRequest struct {
	Account   string `json:"account" binding:"required"`   // hex of the account identifier
	Signature string `json:"signature" binding:"required"` // hex of r || s || v
}

type JSONClaimed struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

type JSONClaim struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

type JSONTotal struct {
	Total string `json:"total"`
}

type JSONMessage struct {
	Account    string `json:"account"`
	MessageHex string `json:"message_hex"`
	// printable only when the account is printable
	MessageText string `json:"message_text"`
}

type JSONClaimedRecord struct {
	Id        int64  `json:"id"`
	Account   string `json:"account"`
	Address   string `json:"address"`
	Amount    string `json:"amount"`
	CreatedAt string `json:"created_at"`
}

type JSONError struct {
	Error string `json:"error"`
}
