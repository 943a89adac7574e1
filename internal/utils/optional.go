package utils

import "encoding/json"

// Optional distingue chave ausente (Set=false) de chave com null (Set=true, Value=nil).
type Optional[T any] struct {
	Set   bool
	Value *T
}

func Some[T any](v T) Optional[T] { return Optional[T]{Set: true, Value: &v} }

func Null[T any]() Optional[T] { return Optional[T]{Set: true} }

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Or devolve o valor informado ou, se a chave não veio, o atual.
func (o Optional[T]) Or(current *T) *T {
	if !o.Set {
		return current
	}
	return o.Value
}
