package check

import (
	"fmt"

	"github.com/elliotchance/orderedmap/v2"
)

// OrderedMapToString renders verdict extra-data as "[k=v k=v]" for log lines
// and sink records.
func OrderedMapToString(data *orderedmap.OrderedMap[string, any]) string {
	if data == nil {
		return "[]"
	}

	dataString := "["
	count := data.Len()
	for _, key := range data.Keys() {
		v, _ := data.Get(key)
		dataString += fmt.Sprintf("%s=%v", key, v)

		count--
		if count > 0 {
			dataString += " "
		}
	}
	dataString += "]"

	return dataString
}
