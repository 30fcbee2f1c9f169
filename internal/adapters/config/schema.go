package config

// Modfile represents the structure of the modcache.yaml configuration file.
type Modfile struct {
	Version         string          `yaml:"version"`
	CacheDir        string          `yaml:"cacheDir"`
	LockFile        string          `yaml:"lockFile"`
	ImportMap       string          `yaml:"importMap"`
	ImportMapBase   string          `yaml:"importMapBase"`
	RedirectTimeout string          `yaml:"redirectTimeout"`
	PreferImport    bool            `yaml:"preferImport"`
	LoaderRules     []LoaderRuleDTO `yaml:"loaderRules"`
}

// LoaderRuleDTO represents a loader rule in the configuration.
type LoaderRuleDTO struct {
	Test   string `yaml:"test"`
	Loader string `yaml:"loader"`
}
