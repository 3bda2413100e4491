package util

// ApplyConversion maps each of the models through the converter,
// returning a non-nil slice so that empty results encode as [].
func ApplyConversion[T any, K any](models []T, converter func(T) K) []K {
	dtos := make([]K, 0, len(models))
	for _, v := range models {
		dtos = append(dtos, converter(v))
	}

	return dtos
}

// NotNilOrDefault dereferences maybe, or returns dflt if it is nil. Used
// for optional query parameters bound by the oapi runtime.
func NotNilOrDefault[T any](maybe *T, dflt T) T {
	if maybe == nil {
		return dflt
	}

	return *maybe
}
