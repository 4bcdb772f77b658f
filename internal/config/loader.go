package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"gopkg.in/ini.v1"
)

// Keys of the parameters file, as section.key in lower case.
const (
	KeyMapleOutput    = "general.mapleoutput"
	KeySiteSpecies    = "catalyst.sitebalancespecies"
	KeySiteArea       = "catalyst.areaactivesite"
	KeyLayerThickness = "catalyst.secondlayerthickness"
	KeyCatalystName   = "catalyst.name"
	KeyTemperature    = "reactor.reactortemp"
	KeyTime           = "reactor.time1"
	KeyDampTime       = "reactor.damptime"
	KeyPotentialRHE   = "electrochemistry.electricpotentialrhe"
	KeyPH             = "electrochemistry.ph"
	KeyElectronLabel  = "electrochemistry.nelectronslabel"

	SectionPressures      = "pressures"
	SectionConcentrations = "concentrations"
)

// EnvPrefix prefixes environment overrides: AMK_REACTOR__REACTORTEMP=600.
const EnvPrefix = "AMK_"

// DefaultFile is the parameters file looked up in a network directory.
const DefaultFile = "parameters.txt"

// flagKeys maps command-line flags onto parameter keys.
var flagKeys = map[string]string{
	"site":        KeySiteSpecies,
	"temperature": KeyTemperature,
	"damptime":    KeyDampTime,
	"potential":   KeyPotentialRHE,
	"ph":          KeyPH,
	"results":     KeyMapleOutput,
}

// RegisterFlags defines the parameter override flags read by Load.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("site", "", "site-balance species (catalyst.sitebalancespecies)")
	fs.Float64("temperature", 0, "reactor temperature in K (reactor.reactortemp)")
	fs.Float64("damptime", 0, "damping rate constant, <= 1e-13 disables damping (reactor.damptime)")
	fs.Float64("potential", 0, "electrode potential vs RHE in V (electrochemistry.electricpotentialrhe)")
	fs.Float64("ph", 0, "electrolyte pH (electrochemistry.ph)")
	fs.String("results", "", "result file written by the Maple worksheet (general.mapleoutput)")
}

// Load layers parameters into a fresh koanf instance.
// Precedence (highest to lowest): flags > env vars > parameters file > defaults.
// path may be empty, in which case only defaults, env and flags apply.
func Load(path string, flags *pflag.FlagSet) (*koanf.Koanf, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		KeyDampTime:      DefaultDampTime,
		KeyTime:          DefaultTime,
		KeyMapleOutput:   DefaultMapleOutput,
		KeyElectronLabel: DefaultElectronLabel,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Parameters file
	if path != "" {
		if err := loadFile(k, path); err != nil {
			return nil, err
		}
	}

	// 3. Environment: AMK_SECTION__KEY -> section.key
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only those explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	return k, nil
}

// FindFile returns the parameters file of a network directory, or "" if none.
func FindFile(dir string) string {
	for _, name := range []string{DefaultFile, "parameters.ini", "parameters.yaml", "parameters.yml"} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func loadFile(k *koanf.Koanf, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return fmt.Errorf("error reading parameters file %s: %w", path, err)
		}
		return nil
	default:
		values, err := readINI(path)
		if err != nil {
			return err
		}
		if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
			return fmt.Errorf("error loading parameters file %s: %w", path, err)
		}
		return nil
	}
}

// readINI flattens an INI file into section.key entries. Section and key
// names are case-insensitive; "#" starts an inline comment.
func readINI(path string) (map[string]interface{}, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		Insensitive:              true,
		SpaceBeforeInlineComment: true,
	}, path)
	if err != nil {
		return nil, fmt.Errorf("error reading parameters file %s: %w", path, err)
	}

	values := make(map[string]interface{})
	for _, section := range f.Sections() {
		if strings.EqualFold(section.Name(), ini.DefaultSection) {
			continue
		}
		for _, key := range section.Keys() {
			values[section.Name()+"."+key.Name()] = strings.TrimSpace(key.Value())
		}
	}
	return values, nil
}
