package user

import "encoding/json"

// OpaqueID decodes an identifier written either as a JSON string or as a
// JSON number. Numbers keep their literal text, so 7 becomes "7".
type OpaqueID string

func (id *OpaqueID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = OpaqueID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}

	*id = OpaqueID(n.String())
	return nil
}
