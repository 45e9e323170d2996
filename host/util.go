package host

import (
	"encoding/json"
	"strconv"

	"github.com/yongseopkim/workrecap/errs"
)

func itoa(n int) string { return strconv.Itoa(n) }

func decodeJSON(body []byte, out interface{}) error {
	if err := json.Unmarshal(body, out); err != nil {
		return &errs.FetchError{Reason: "decode response", Cause: err}
	}
	return nil
}
