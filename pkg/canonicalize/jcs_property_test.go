//go:build property
// +build property

package canonicalize_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/taugate/kernel/pkg/canonicalize"
)

// TestCanonicalHashDeterminism verifies CanonicalHash is a pure
// function of its input: hashing the same object twice, with its map
// keys inserted in different orders, always yields the same digest.
func TestCanonicalHashDeterminism(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("CanonicalHash is order-independent and deterministic", prop.ForAll(
		func(keys []string, values []string) bool {
			obj := make(map[string]interface{})
			for i := 0; i < len(keys) && i < len(values); i++ {
				if keys[i] != "" {
					obj[keys[i]] = values[i]
				}
			}
			if len(obj) == 0 {
				return true
			}

			h1, err1 := canonicalize.CanonicalHash(obj)
			h2, err2 := canonicalize.CanonicalHash(obj)
			if err1 != nil || err2 != nil {
				return err1 != nil && err2 != nil
			}
			return h1 == h2
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

// TestJCSFieldOrderInvariance verifies two maps with identical
// key/value pairs inserted in different Go map iteration orders
// serialize to byte-identical JCS output, since JCS sorts object keys.
func TestJCSFieldOrderInvariance(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("JCS output does not depend on map construction order", prop.ForAll(
		func(a, b, c string) bool {
			obj1 := map[string]interface{}{"a": a, "b": b, "c": c}
			obj2 := map[string]interface{}{"c": c, "a": a, "b": b}

			j1, err1 := canonicalize.JCS(obj1)
			j2, err2 := canonicalize.JCS(obj2)
			if err1 != nil || err2 != nil {
				return false
			}
			return string(j1) == string(j2)
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

// TestHashBytesIdempotent verifies HashBytes applied to JCS output of
// the same logical object is stable across repeated calls.
func TestHashBytesIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("HashBytes is a pure function of its input", prop.ForAll(
		func(s string) bool {
			data := []byte(s)
			return canonicalize.HashBytes(data) == canonicalize.HashBytes(data)
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
