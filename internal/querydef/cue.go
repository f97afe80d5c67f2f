package querydef

import (
	"bytes"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// ParseCUE compiles a single CUE source and extracts the definitions under
// its top-level "query" struct. filename is only used in error positions.
func ParseCUE(src []byte, filename string) ([]Definition, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err, "cue")
	}
	return definitionsFromCUE(v)
}

// LoadCUE loads the CUE package in dir (all of its .cue files, unified) and
// extracts the definitions under its "query" struct.
func LoadCUE(dir string) ([]Definition, error) {
	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, errorf("cue", "no CUE instances loaded from %s", dir)
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	v := ctx.BuildInstance(inst)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err, "cue")
	}
	return definitionsFromCUE(v)
}

func definitionsFromCUE(v cue.Value) ([]Definition, error) {
	queriesVal := v.LookupPath(cue.ParsePath("query"))
	if !queriesVal.Exists() {
		return nil, errorf("query", "no query definitions found")
	}

	iter, err := queriesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err, "query")
	}

	var defs []Definition
	for iter.Next() {
		def, err := definitionFromCUE(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	if len(defs) == 0 {
		return nil, errorf("query", "no query definitions found")
	}
	return defs, nil
}

// definitionFromCUE decodes one query value. The value must be concrete;
// it goes through its JSON form so CUE and YAML share the Definition
// decoding rules.
func definitionFromCUE(label string, v cue.Value) (Definition, error) {
	field := "query." + label

	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Definition{}, formatCUEError(err, field)
	}
	data, err := v.MarshalJSON()
	if err != nil {
		return Definition{}, formatCUEError(err, field)
	}

	var def Definition
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&def); err != nil {
		return Definition{}, &Error{Field: field, Message: err.Error(), Pos: v.Pos()}
	}

	if def.Name == "" {
		def.Name = label
	}
	if err := validateDefinition(&def); err != nil {
		return Definition{}, fmt.Errorf("invalid definition: %w", err)
	}
	return def, nil
}
