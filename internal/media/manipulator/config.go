package manipulator

type Config struct {
	AllowUpscale        bool
	SizeDiscreteStep    int
	QualityDiscreteStep int
	Backend             Backend
	ValidExtensions     []string
	Presets             Presets
}

var defaultExtensions = []string{"jpg", "jpeg", "png"}

func (cfg *Config) extensions() []string {
	if len(cfg.ValidExtensions) == 0 {
		return defaultExtensions
	}

	return cfg.ValidExtensions
}
