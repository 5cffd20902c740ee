// Package sparse implements the forward index (SparseDataset), the
// inner-product distance kernels, and the component/value types shared by
// the rest of the retrieval engine.
package sparse

import "github.com/x448/float16"

// Component is a vocabulary dimension id. Datasets with up to 2^16 columns
// use uint16; larger vocabularies use uint32. Both widths are monomorphized
// via this type parameter instead of boxed behind an interface, so a scan
// over postings never pays for dynamic dispatch.
type Component interface {
	~uint16 | ~uint32
}

// Value is a document or summary score. F32 is the format datasets are
// loaded in; float16.Float16 is the half-precision format the index stores
// on disk after QuantizeF16.
type Value interface {
	Float32() float32
}

// F32 wraps float32 so it satisfies Value alongside float16.Float16.
type F32 float32

// Float32 returns v as a float32.
func (v F32) Float32() float32 { return float32(v) }

// F16 is the on-disk half-precision value representation.
type F16 = float16.Float16

// ToF16 narrows a 32-bit float to half precision. Conversion is lossy and
// one-way, matching the build-time quantize_f16 step.
func ToF16(v float32) F16 {
	return float16.Fromfloat32(v)
}
