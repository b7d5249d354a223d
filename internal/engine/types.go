package engine

// FairResult is one consumed draw. It is not persisted by the engine; the
// value is reproducible from the epoch's secret seed, ClientSeed, Nonce and
// the requested range.
type FairResult struct {
	Value      int64  `json:"value"`
	ClientSeed string `json:"client_seed"`
	Nonce      uint64 `json:"nonce"`
	Epoch      int64  `json:"epoch"`
	Min        int64  `json:"min"`
	Max        int64  `json:"max"`
}
