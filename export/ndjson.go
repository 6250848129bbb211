package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/BrobridgeOrg/go-quickbase/orm"
)

// writeNDJSON writes one JSON object per record, keyed by attribute name.
// Absent attributes are left out.
func writeNDJSON(w io.Writer, records []*orm.Record) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	for row, r := range records {
		obj := make(map[string]any)
		for _, name := range r.Attributes() {
			f, err := r.Table().Field(name)
			if err != nil {
				return err
			}
			obj[name] = f.Encode(r.Get(name))
		}
		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode row %d: %w", row, err)
		}
	}
	return bw.Flush()
}
