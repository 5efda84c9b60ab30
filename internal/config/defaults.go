package config

// Default vector store file names.
const (
	DefaultElementalFile = "elementalvectors.bin"
	DefaultSemanticFile  = "semanticvectors.bin"
	DefaultPredicateFile = "predicatevectors.bin"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Model.Dimensions == 0 {
		cfg.Model.Dimensions = 200
	}
	if cfg.Model.VectorType == "" {
		cfg.Model.VectorType = "real"
	}
	if cfg.Model.MinTermLength == 0 {
		cfg.Model.MinTermLength = 1
	}
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = "/usr/local/var/predvec/data/models"
	}
	if cfg.Output.ElementalFile == "" {
		cfg.Output.ElementalFile = DefaultElementalFile
	}
	if cfg.Output.SemanticFile == "" {
		cfg.Output.SemanticFile = DefaultSemanticFile
	}
	if cfg.Output.PredicateFile == "" {
		cfg.Output.PredicateFile = DefaultPredicateFile
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/predvec/data/db/predications.db"
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".tsv"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
