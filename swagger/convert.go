package swagger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
)

// ConvertV3 converts the document to OpenAPI 3.
func (d *Document) ConvertV3() (*openapi3.T, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	var v2 openapi2.T
	if err := json.Unmarshal(data, &v2); err != nil {
		return nil, fmt.Errorf("decode swagger 2.0 document: %w", err)
	}

	v3, err := openapi2conv.ToV3(&v2)
	if err != nil {
		return nil, fmt.Errorf("convert to openapi 3: %w", err)
	}

	// Converted references point at components but carry no values yet.
	loader := openapi3.NewLoader()
	if err := loader.ResolveRefsIn(v3, nil); err != nil {
		return nil, fmt.Errorf("resolve openapi 3 references: %w", err)
	}
	return v3, nil
}

// Validate checks the document for completeness and then validates its
// OpenAPI 3 conversion.
func (d *Document) Validate(ctx context.Context) error {
	if err := d.Check(); err != nil {
		return err
	}

	v3, err := d.ConvertV3()
	if err != nil {
		return err
	}
	if err := v3.Validate(ctx); err != nil {
		return fmt.Errorf("validate openapi 3: %w", err)
	}
	return nil
}

func (d *Document) openAPI3JSON() ([]byte, error) {
	v3, err := d.ConvertV3()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(v3, "", "  ")
}
