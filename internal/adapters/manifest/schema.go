package manifest

// lockFile is the on-disk lock map. Version "2" keeps packages under "npm",
// version "3" under "packages".
type lockFile struct {
	Version   string            `json:"version"`
	Remote    map[string]string `json:"remote"`
	Redirects map[string]string `json:"redirects"`
	Npm       *npmSectionV2     `json:"npm"`
	Packages  *packagesV3       `json:"packages"`
}

type npmSectionV2 struct {
	Specifiers map[string]string     `json:"specifiers"`
	Packages   map[string]packageDTO `json:"packages"`
}

type packagesV3 struct {
	Specifiers map[string]string     `json:"specifiers"`
	Npm        map[string]packageDTO `json:"npm"`
}

type packageDTO struct {
	Integrity    string            `json:"integrity"`
	Dependencies map[string]string `json:"dependencies"`
}
