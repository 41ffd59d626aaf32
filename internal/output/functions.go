package output

import (
	"encoding/csv"
	"encoding/json"
	"strconv"

	"github.com/hogtail/hogtail/internal/api"
)

// FormatFunctions outputs a function listing in the configured format.
func (f *Formatter) FormatFunctions(functions []api.Function) error {
	switch f.format {
	case FormatJSON:
		encoder := json.NewEncoder(f.writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(functions)
	case FormatCSV:
		writer := csv.NewWriter(f.writer)
		defer writer.Flush()
		if err := writer.Write([]string{"id", "name", "type", "enabled"}); err != nil {
			return err
		}
		for _, fn := range functions {
			record := []string{fn.ID, fn.Name, fn.Type, strconv.FormatBool(fn.Enabled)}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
		return nil
	default:
		if len(functions) == 0 {
			f.renderer.NoResults()
			return nil
		}
		rows := make([][]string, len(functions))
		for i, fn := range functions {
			enabled := "disabled"
			if fn.Enabled {
				enabled = "enabled"
			}
			rows[i] = []string{fn.ID, fn.Name, fn.Type, enabled}
		}
		f.renderer.Table([]string{"ID", "NAME", "TYPE", "STATUS"}, rows)
		return nil
	}
}
