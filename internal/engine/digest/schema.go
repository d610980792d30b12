package digest

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nzdigest/nzdigest/internal/engine"
)

// SchemaVersion names the canonical summary shape.
const SchemaVersion = "nzdigest.summary/v2"

//go:embed schemas/summary.schema.json
var summarySchemaJSON string

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

var summarySchema = mustCompileSchema(summarySchemaJSON, "summary.schema.json")

func mustCompileSchema(raw, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// ValidateSummary checks a decoded provider object against the summary schema
// and converts it into a SummaryResult. Failures are KindSchemaValidation
// errors whose Details hold one "/path: message" entry per violation.
func ValidateSummary(obj map[string]any) (*engine.SummaryResult, error) {
	if errs := validateAgainstSchema(summarySchema, obj); len(errs) > 0 {
		e := engine.Errorf(engine.KindSchemaValidation, engine.StageSummarize, "summary does not match %s", SchemaVersion)
		e.Details = errs
		return nil, e
	}

	// The schema guarantees the shape, so a re-encode round trip is lossless.
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, engine.NewError(engine.KindSchemaValidation, engine.StageSummarize, "summary re-encode failed", err)
	}
	var out engine.SummaryResult
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, engine.NewError(engine.KindSchemaValidation, engine.StageSummarize, "summary decode failed", err)
	}
	normalizeSummary(&out)
	return &out, nil
}

// normalizeSummary trims strings and keeps arrays non-nil so JSON output
// always carries [] rather than null.
func normalizeSummary(s *engine.SummaryResult) {
	s.MainTopic = strings.TrimSpace(s.MainTopic)
	s.Conclusion = strings.TrimSpace(s.Conclusion)
	for _, items := range []*[]engine.SummaryItem{&s.Chronology, &s.KeyPoints, &s.Insights} {
		if *items == nil {
			*items = []engine.SummaryItem{}
		}
		for i := range *items {
			(*items)[i].Title = strings.TrimSpace((*items)[i].Title)
			(*items)[i].Explanation = strings.TrimSpace((*items)[i].Explanation)
		}
	}
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	sort.Strings(errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}
