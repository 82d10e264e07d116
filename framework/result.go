package framework

// FixResult records the outcome of one fix attempt. Results merge into batch
// aggregates; merging is commutative and associative so partial results can
// be combined in any order.
type FixResult struct {
	Success         bool
	Confidence      float64
	FixesApplied    []string
	FilesModified   []string
	RemainingIssues []string
	Recommendations []string
}

// Merge combines two results: success ANDs, confidence takes the minimum,
// list fields concatenate. The receiver is not mutated.
func (r FixResult) Merge(other FixResult) FixResult {
	conf := r.Confidence
	if other.Confidence < conf {
		conf = other.Confidence
	}
	return FixResult{
		Success:         r.Success && other.Success,
		Confidence:      conf,
		FixesApplied:    concat(r.FixesApplied, other.FixesApplied),
		FilesModified:   concat(r.FilesModified, other.FilesModified),
		RemainingIssues: concat(r.RemainingIssues, other.RemainingIssues),
		Recommendations: concat(r.Recommendations, other.Recommendations),
	}
}

// FixFailure builds the canonical failure result for an expected or
// downgraded-unexpected failure mode.
func FixFailure(reason string) *FixResult {
	return &FixResult{
		Success:         false,
		Confidence:      0,
		RemainingIssues: []string{reason},
	}
}

// FixSuccess builds a success result for a single applied fix.
func FixSuccess(confidence float64, applied, file string) *FixResult {
	res := &FixResult{Success: true, Confidence: confidence}
	if applied != "" {
		res.FixesApplied = append(res.FixesApplied, applied)
	}
	if file != "" {
		res.FilesModified = append(res.FilesModified, file)
	}
	return res
}

// ValidationResult is the accept/reject decision for a candidate fix.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// Merge ANDs validity and concatenates errors, producing a new value.
func (v ValidationResult) Merge(other ValidationResult) ValidationResult {
	return ValidationResult{
		Valid:  v.Valid && other.Valid,
		Errors: concat(v.Errors, other.Errors),
	}
}

// Invalid builds a rejection carrying the given reasons.
func Invalid(reasons ...string) ValidationResult {
	return ValidationResult{Valid: false, Errors: reasons}
}

// Validated builds an acceptance.
func Validated() ValidationResult {
	return ValidationResult{Valid: true}
}

func concat(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
