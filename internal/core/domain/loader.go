package domain

import (
	"regexp"

	"go.trai.ch/zerr"
)

// Loader is the content type a bundler uses to interpret module bytes.
type Loader string

// Known loaders.
const (
	LoaderJS    Loader = "js"
	LoaderJSX   Loader = "jsx"
	LoaderTS    Loader = "ts"
	LoaderTSX   Loader = "tsx"
	LoaderJSON  Loader = "json"
	LoaderCSS   Loader = "css"
	LoaderText  Loader = "text"
	LoaderFile  Loader = "file"
	LoaderBin   Loader = "binary"
	LoaderEmpty Loader = "empty"
)

var knownLoaders = map[Loader]bool{
	LoaderJS: true, LoaderJSX: true, LoaderTS: true, LoaderTSX: true, LoaderJSON: true,
	LoaderCSS: true, LoaderText: true, LoaderFile: true, LoaderBin: true, LoaderEmpty: true,
}

// LoaderRule assigns Loader to every module URL matching Test.
type LoaderRule struct {
	Test   *regexp.Regexp
	Loader Loader
}

// NewLoaderRule compiles pattern and validates the loader name.
func NewLoaderRule(pattern, loader string) (LoaderRule, error) {
	if !knownLoaders[Loader(loader)] {
		return LoaderRule{}, zerr.With(ErrInvalidLoaderRule, "loader", loader)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return LoaderRule{}, zerr.With(zerr.Wrap(err, ErrInvalidLoaderRule.Error()), "test", pattern)
	}
	return LoaderRule{Test: re, Loader: Loader(loader)}, nil
}

// DefaultLoaderRules are consulted after any configured rules.
var DefaultLoaderRules = []LoaderRule{
	{Test: regexp.MustCompile(`\.(c|m)?js$`), Loader: LoaderJS},
	{Test: regexp.MustCompile(`\.jsx$`), Loader: LoaderJSX},
	{Test: regexp.MustCompile(`\.(c|m)?ts$`), Loader: LoaderTS},
	{Test: regexp.MustCompile(`\.tsx$`), Loader: LoaderTSX},
	{Test: regexp.MustCompile(`\.json$`), Loader: LoaderJSON},
	{Test: regexp.MustCompile(`\.css$`), Loader: LoaderCSS},
	{Test: regexp.MustCompile(`\.txt$`), Loader: LoaderText},
}

// LoaderRules is an ordered rule list; the first matching rule wins.
type LoaderRules []LoaderRule

// NewLoaderRules returns the configured rules followed by the defaults.
func NewLoaderRules(configured []LoaderRule) LoaderRules {
	rules := make(LoaderRules, 0, len(configured)+len(DefaultLoaderRules))
	rules = append(rules, configured...)
	return append(rules, DefaultLoaderRules...)
}

// Match returns the loader for href, or "" when no rule matches.
func (r LoaderRules) Match(href string) Loader {
	for _, rule := range r {
		if rule.Test.MatchString(href) {
			return rule.Loader
		}
	}
	return ""
}
