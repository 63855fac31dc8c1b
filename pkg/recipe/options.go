package recipe

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Configurer applies a resolved property map onto a target object's fields.
// The structural mechanism is pluggable; the catalog only depends on this
// interface.
type Configurer interface {
	Configure(target any, properties map[string]any) error
}

// MapConfigurer is the default Configurer. It decodes property maps onto
// exported fields with weak typing, so YAML scalars coerce onto typed option
// fields, and leaves fields without a matching property untouched.
type MapConfigurer struct{}

func (MapConfigurer) Configure(target any, properties map[string]any) error {
	if len(properties) == 0 {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}

	if err := dec.Decode(properties); err != nil {
		return fmt.Errorf("failed to configure %T: %w", target, err)
	}
	return nil
}
