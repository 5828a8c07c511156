package generator

import "fmt"

// ConfigError reports an invalid generation parameter.  Generation
// fails before any table is produced.
type ConfigError struct {
	Param  string
	Value  interface{}
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid generator parameter %s=%v: %s", e.Param, e.Value, e.Reason)
}

// ReferentialError reports an internal consistency violation detected
// after generation.  It indicates a generator bug; the snapshot is
// discarded rather than returned inconsistent.
type ReferentialError struct {
	Table  string
	RowID  string
	Detail string
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("referential violation in %s row %s: %s", e.Table, e.RowID, e.Detail)
}
