package claims

type Config struct {
	// Prefix is the human readable statement in front of the account in
	// the signed message. Empty selects claimmsg.DefaultClaimPrefix.
	Prefix string
}
