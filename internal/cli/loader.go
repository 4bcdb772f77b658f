package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"github.com/spf13/pflag"

	"github.com/roach88/amk/internal/catalog"
	"github.com/roach88/amk/internal/compiler"
	"github.com/roach88/amk/internal/config"
	"github.com/roach88/amk/internal/ir"
	"github.com/roach88/amk/internal/tables"
)

// Network files looked up in a network directory.
const (
	SpeciesFile   = "itm.csv"
	ReactionsFile = "rxn.csv"
)

// Network sources.
const (
	SourceTables = "tables"
	SourceCUE    = "cue"
)

// LoadResult is a network directory read into memory.
type LoadResult struct {
	Settings   *config.Settings
	Warnings   []config.Warning
	Species    []ir.Species
	Reactions  []ir.Reaction
	Source     string // SourceTables or SourceCUE
	ConfigPath string // parameters file used, empty if none
	FileCount  int    // number of network files read
}

// LoadError represents an error that occurred while loading a network.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
	File    string    // table file, with Line
	Line    int
}

func (e *LoadError) Error() string {
	switch {
	case e.Pos.IsValid():
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Code, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// LoadNetwork reads the parameters and the network of a directory.
//
// The parameters file is configPath when set, otherwise the one FindFile
// locates in dir; flags are layered on top. The network comes from itm.csv
// and rxn.csv when itm.csv exists, otherwise from the directory's CUE files.
func LoadNetwork(dir, configPath string, flags *pflag.FlagSet) (*LoadResult, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("network directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing network directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	if configPath == "" {
		configPath = config.FindFile(dir)
	} else if _, err := os.Stat(configPath); err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("parameters file not found: %s", configPath)}
	}

	k, err := config.Load(configPath, flags)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeConfig, Message: err.Error()}
	}
	settings, warnings, err := config.Resolve(k)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeConfig, Message: err.Error()}
	}

	result := &LoadResult{
		Settings:   settings,
		Warnings:   warnings,
		ConfigPath: configPath,
	}
	label := settings.Electrochemistry.ElectronLabel

	speciesPath := filepath.Join(dir, SpeciesFile)
	if _, err := os.Stat(speciesPath); err == nil {
		result.Source = SourceTables
		if err := loadTables(result, dir, label); err != nil {
			return nil, err
		}
		return result, nil
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no %s or CUE files found in %s", SpeciesFile, dir)}
	}
	result.Source = SourceCUE
	result.FileCount = len(cueFiles)
	if err := loadCUE(result, dir, label); err != nil {
		return nil, err
	}
	return result, nil
}

func loadTables(result *LoadResult, dir, electronLabel string) error {
	speciesPath := filepath.Join(dir, SpeciesFile)
	f, err := os.Open(speciesPath)
	if err != nil {
		return &LoadError{Code: ErrCodeNotFound, Message: err.Error()}
	}
	defer f.Close()
	result.Species, err = tables.ReadSpecies(f, electronLabel)
	if err != nil {
		return tableError(speciesPath, err)
	}
	result.FileCount++

	reactionsPath := filepath.Join(dir, ReactionsFile)
	rf, err := os.Open(reactionsPath)
	if os.IsNotExist(err) {
		return &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("%s found but %s missing in %s", SpeciesFile, ReactionsFile, dir)}
	}
	if err != nil {
		return &LoadError{Code: ErrCodeNotFound, Message: err.Error()}
	}
	defer rf.Close()
	result.Reactions, err = tables.ReadReactions(rf, electronLabel)
	if err != nil {
		return tableError(reactionsPath, err)
	}
	result.FileCount++
	return nil
}

func tableError(path string, err error) *LoadError {
	var parseErr *tables.ParseError
	if errors.As(err, &parseErr) {
		return &LoadError{Code: ErrCodeTableParse, Message: parseErr.Error(), File: path, Line: parseErr.Line}
	}
	return &LoadError{Code: ErrCodeTableParse, Message: fmt.Sprintf("%s: %v", path, err)}
}

func loadCUE(result *LoadResult, dir, electronLabel string) error {
	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	species, reactions, err := compiler.CompileCUE(value, electronLabel)
	if err != nil {
		return convertCompileError(err)
	}
	result.Species = species
	result.Reactions = reactions
	return nil
}

// Network builds the catalog and reaction table. Duplicate labels or IDs
// fail here.
func (r *LoadResult) Network() (*compiler.Network, error) {
	cat, err := catalog.New(r.Species...)
	if err != nil {
		return nil, err
	}
	table, err := catalog.NewReactionTable(r.Reactions...)
	if err != nil {
		return nil, err
	}
	return &compiler.Network{Species: cat, Reactions: table}, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths, sorted.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// convertCompileError converts a CUE front-end error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No network files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeConfig      = "E008" // Parameters missing or invalid
	ErrCodeTableParse  = "E009" // Malformed species or reaction table
	ErrCodeDatabase    = "E010" // Registry open/read/write error

	// CUE network errors
	ErrCodeNetworkField  = "E100" // Invalid field shared by species and reactions (G, electron count)
	ErrCodeSpeciesField  = "E101" // Invalid species entry
	ErrCodeReactionField = "E102" // Invalid reaction entry

	// Compile errors share the validation codes
	ErrCodeNoSurfaceSpecies = compiler.ErrEmptySurface // Only the site species is on the surface
)

// MapFieldToErrorCode maps a CUE compile error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "species", "phase", "mw", "frq":
		return ErrCodeSpeciesField
	case "reaction", "alpha":
		return ErrCodeReactionField
	case "cue":
		return ErrCodeBuildFailed
	default:
		return ErrCodeNetworkField
	}
}

// MapCompileErrorToCode maps a fatal compile error to its validation code.
func MapCompileErrorToCode(err error) string {
	var (
		unresolved *compiler.UnresolvedParticipantError
		topology   *compiler.UnsupportedReactionTopologyError
		phase      *compiler.UnknownPhaseError
		site       *compiler.MissingSiteSpeciesError
		mw         *compiler.MissingMolecularWeightError
		area       *compiler.MissingSiteAreaError
		ident      *compiler.InvalidIdentifierError
	)
	switch {
	case errors.As(err, &site):
		return compiler.ErrMissingSiteSpecies
	case errors.As(err, &phase):
		return compiler.ErrUnknownPhase
	case errors.As(err, &unresolved):
		return compiler.ErrUnresolvedLabel
	case errors.As(err, &topology):
		return compiler.ErrTwoGasParticipants
	case errors.As(err, &mw):
		return compiler.ErrMissingMolecularMass
	case errors.As(err, &area):
		return compiler.ErrMissingSiteArea
	case errors.As(err, &ident):
		return compiler.ErrInvalidIdentifier
	case catalog.IsDuplicateKey(err):
		return compiler.ErrDuplicateKey
	case errors.Is(err, compiler.ErrNoSurfaceSpecies):
		return ErrCodeNoSurfaceSpecies
	default:
		return ErrCodeGeneric
	}
}
