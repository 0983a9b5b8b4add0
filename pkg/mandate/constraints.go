package mandate

import (
	"bytes"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ConstraintsSchemaVersion is the well-known key a mandate's opaque
// constraints map may carry to declare which constraints-schema
// version it was authored against.
const ConstraintsSchemaVersion = "schema_version"

// CheckSchemaVersionCompatible reports whether a mandate's declared
// constraints.schema_version satisfies constraint (a semver range such
// as "^1.0.0"). Mandates without a declared schema_version are always
// considered compatible — the kernel never requires this field.
func CheckSchemaVersionCompatible(constraints map[string]interface{}, constraint string) (bool, error) {
	raw, ok := constraints[ConstraintsSchemaVersion]
	if !ok {
		return true, nil
	}
	verStr, ok := raw.(string)
	if !ok {
		return false, fmt.Errorf("mandate: constraints.schema_version must be a string, got %T", raw)
	}

	ver, err := semver.NewVersion(verStr)
	if err != nil {
		return false, fmt.Errorf("mandate: invalid constraints.schema_version %q: %w", verStr, err)
	}

	rng, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("mandate: invalid semver constraint %q: %w", constraint, err)
	}

	return rng.Check(ver), nil
}

// ValidateConstraintsSchema validates a mandate's opaque constraints
// map against an externally-supplied JSON Schema. This is an optional
// shape check only — the kernel never interprets or evaluates the
// constraints map itself, it only (optionally) validates its shape
// before storing it.
func ValidateConstraintsSchema(schema *jsonschema.Schema, constraints map[string]interface{}) error {
	if schema == nil {
		return nil
	}
	return schema.Validate(constraints)
}

// CompileConstraintsSchema compiles a raw JSON Schema document for
// repeated use with ValidateConstraintsSchema.
func CompileConstraintsSchema(url string, schemaJSON []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource(url, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("mandate: add schema resource: %w", err)
	}
	return compiler.Compile(url)
}
