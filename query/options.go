package query

// Options controls query evaluation (§4.7, §6): case_ignore and
// strsim_threshold are forwarded to the embedded subfield-matcher filter,
// squash/merge/separator govern the projection post-operations.
type Options struct {
	CaseIgnore      bool
	StrsimThreshold float64
	Squash          bool
	Merge           bool
	Separator       string
}

// DefaultSeparator is used when an Options value leaves Separator at its
// zero value.
const DefaultSeparator = "|"

func (o Options) separator() string {
	if o.Separator == "" {
		return DefaultSeparator
	}
	return o.Separator
}
