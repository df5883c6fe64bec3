package sth

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/relvacode/iso8601"
	"github.com/tidwall/gjson"

	"lumitemp/pkg/model"
)

// ValuesPath locates the raw samples inside an STH query response.
const ValuesPath = "contextResponses.0.contextElement.attributes.0.values"

// Parse decodes the samples of an STH historical query response. Every
// timestamp is converted to loc when loc is not nil.
//
// A response without the values list, or with an entry missing attrValue or
// recvTime, yields a *KeyError. Unparsable or non-finite values and
// unparsable timestamps yield ErrMalformed.
func Parse(body []byte, loc *time.Location) (model.Samples, error) {
	if !gjson.ValidBytes(body) {
		return nil, NewMalformedError("invalid json", nil)
	}
	values := gjson.GetBytes(body, ValuesPath)
	if !values.Exists() {
		return nil, &KeyError{Path: ValuesPath}
	}
	if !values.IsArray() {
		return nil, NewMalformedError(ValuesPath+" is not a list", nil)
	}

	entries := values.Array()
	samples := make(model.Samples, 0, len(entries))
	for i, entry := range entries {
		sample, err := parseEntry(entry)
		if err != nil {
			var ke *KeyError
			if errors.As(err, &ke) {
				ke.Path = fmt.Sprintf("%s.%d.%s", ValuesPath, i, ke.Path)
				return nil, ke
			}
			return nil, err
		}
		samples = append(samples, sample)
	}
	return samples.In(loc), nil
}

func parseEntry(entry gjson.Result) (model.Sample, error) {
	rawValue := entry.Get("attrValue")
	if !rawValue.Exists() {
		return model.Sample{}, &KeyError{Path: "attrValue"}
	}
	rawTime := entry.Get("recvTime")
	if !rawTime.Exists() {
		return model.Sample{}, &KeyError{Path: "recvTime"}
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(rawValue.String()), 64)
	if err != nil {
		return model.Sample{}, NewMalformedError("attrValue", err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return model.Sample{}, NewMalformedError(fmt.Sprintf("attrValue %q is not finite", rawValue.String()), nil)
	}
	ts, err := ParseTime(rawTime.String())
	if err != nil {
		return model.Sample{}, err
	}
	return model.Sample{Time: ts, Value: value}, nil
}

// ParseTime parses an ISO-8601 recvTime. Timestamps without a zone are
// taken as UTC.
func ParseTime(s string) (time.Time, error) {
	ts, err := iso8601.ParseString(strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, NewMalformedError("recvTime", err)
	}
	return ts.UTC(), nil
}
