package config

// ValidatableConfig is anything that can check itself for configuration
// errors, so RunConfig can aggregate across whichever probe configs a run
// happens to carry without a type switch.
type ValidatableConfig interface {
	Validate() []error
}

// Validate runs Validate on every cfg and concatenates the results.
func Validate(cfgs ...ValidatableConfig) []error {
	var out []error
	for _, cfg := range cfgs {
		out = append(out, cfg.Validate()...)
	}
	return out
}
