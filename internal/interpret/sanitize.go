package interpret

import "github.com/railplan/copilot/internal/models"

// Field kinds for payload sanitization.
const (
	kindString = iota
	kindBool
	kindNumber
	kindObject
	kindArray
	kindRef // string or {"id"/"name": ...} object
)

// knownFields whitelists the payload keys the dispatcher understands, with
// their expected JSON shape. Anything an LLM invents beyond this is dropped
// before dispatch; a known key with the wrong shape is dropped too.
var knownFields = map[string]int{
	"action": kindString,

	"target":  kindRef,
	"name":    kindString,
	"patch":   kindObject,
	"actions": kindArray,

	"pool":            kindRef,
	"homeSite":        kindRef,
	"vehicleType":     kindRef,
	"homeDepot":       kindRef,
	"vehicleTypes":    kindArray,
	"personnelNumber": kindString,
	"firstName":       kindString,
	"lastName":        kindString,
	"vehicleNumber":   kindString,
	"capacity":        kindNumber,

	"label":       kindString,
	"year":        kindString,
	"id":          kindString,
	"description": kindString,

	"opId":                    kindString,
	"uniqueOpId":              kindString,
	"countryCode":             kindString,
	"opType":                  kindString,
	"position":                kindObject,
	"solId":                   kindString,
	"start":                   kindRef,
	"end":                     kindRef,
	"lengthKm":                kindNumber,
	"nature":                  kindString,
	"siteId":                  kindString,
	"siteType":                kindString,
	"operationalPoint":        kindRef,
	"openingHoursJson":        kindString,
	"replacementStopId":       kindString,
	"stopCode":                kindString,
	"nearestOperationalPoint": kindRef,
	"replacementRouteId":      kindString,
	"operator":                kindString,
	"replacementEdgeId":       kindString,
	"route":                   kindRef,
	"from":                    kindObject,
	"to":                      kindObject,
	"seq":                     kindNumber,
	"avgDurationSec":          kindNumber,
	"distanceM":               kindNumber,
	"linkId":                  kindString,
	"replacementStop":         kindRef,
	"relationType":            kindString,
	"walkingTimeSec":          kindNumber,
	"transferId":              kindString,
	"mode":                    kindString,
	"bidirectional":           kindBool,
	"kind":                    kindString,
	"ref":                     kindString,
	"lat":                     kindNumber,
	"lon":                     kindNumber,
}

// Sanitize strips unknown fields and wrongly-typed values from an untrusted
// payload, recursing into patch objects and batch sub-actions. The result
// shares no structure with the input.
func Sanitize(p models.ActionPayload) models.ActionPayload {
	if p == nil {
		return nil
	}
	return sanitizeObject(map[string]any(p))
}

func sanitizeObject(in map[string]any) models.ActionPayload {
	out := make(models.ActionPayload, len(in))
	for key, val := range in {
		kind, known := knownFields[key]
		if !known {
			continue
		}
		if clean, ok := sanitizeValue(key, kind, val); ok {
			out[key] = clean
		}
	}
	return out
}

func sanitizeValue(key string, kind int, val any) (any, bool) {
	switch kind {
	case kindString:
		s, ok := val.(string)
		return s, ok
	case kindBool:
		b, ok := val.(bool)
		return b, ok
	case kindNumber:
		switch n := val.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		}
		return nil, false
	case kindObject:
		obj, ok := val.(map[string]any)
		if !ok {
			return nil, false
		}
		return map[string]any(sanitizeObject(obj)), true
	case kindArray:
		arr, ok := val.([]any)
		if !ok {
			return nil, false
		}
		return sanitizeArray(key, arr), true
	case kindRef:
		switch r := val.(type) {
		case string:
			return r, true
		case map[string]any:
			ref := make(map[string]any, 2)
			if id, ok := r["id"].(string); ok {
				ref["id"] = id
			}
			if name, ok := r["name"].(string); ok {
				ref["name"] = name
			}
			return ref, len(ref) > 0
		}
		return nil, false
	}
	return nil, false
}

// sanitizeArray cleans the two array shapes the dispatcher reads: batch
// sub-actions (objects) and vehicle type references (strings).
func sanitizeArray(key string, arr []any) []any {
	out := make([]any, 0, len(arr))
	for _, v := range arr {
		switch e := v.(type) {
		case map[string]any:
			if key == "actions" {
				out = append(out, map[string]any(sanitizeObject(e)))
			}
		case string:
			if key == "vehicleTypes" {
				out = append(out, e)
			}
		}
	}
	return out
}
