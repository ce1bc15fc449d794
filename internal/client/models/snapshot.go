package models

// Snapshot is the unit of persistence: every account and every token, always
// read and written as a whole. The two maps are independent; keeping tokens
// attached to existing accounts is the caller's job.
type Snapshot struct {
	Accounts map[string]Account   `json:"accounts"`
	Tokens   map[string]AuthToken `json:"tokens"`
}

// NewSnapshot returns an empty snapshot with allocated maps.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Accounts: make(map[string]Account),
		Tokens:   make(map[string]AuthToken),
	}
}

// Clone returns a deep copy. Account and AuthToken hold only value fields,
// so copying the map entries is enough.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Accounts: make(map[string]Account, len(s.Accounts)),
		Tokens:   make(map[string]AuthToken, len(s.Tokens)),
	}
	for k, v := range s.Accounts {
		out.Accounts[k] = v
	}
	for k, v := range s.Tokens {
		out.Tokens[k] = v
	}
	return out
}

// Normalize makes sure both maps are non-nil after decoding a document that
// omitted one of them.
func (s *Snapshot) Normalize() {
	if s.Accounts == nil {
		s.Accounts = make(map[string]Account)
	}
	if s.Tokens == nil {
		s.Tokens = make(map[string]AuthToken)
	}
}
