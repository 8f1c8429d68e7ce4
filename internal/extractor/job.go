package extractor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	gpt "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// FunctionName is the single function the completion service may call.
const FunctionName = "get_job_info"

const functionDescription = "Get Job Poster, Job Title, and Job Description, Job Location, Technical Skills from the data"

// jobInfoArgs is the argument object of get_job_info. The parameter schema sent to the
// service is generated from these tags, so the json names here are the wire contract.
type jobInfoArgs struct {
	JobPoster       string `json:"job_poster" description:"The job poster, e.g. Amazon"`
	JobTitle        string `json:"job_title" description:"The Title of Job e.g. Software Engineer"`
	JobDescription  string `json:"job_description" description:"The Job Description"`
	JobLocation     string `json:"job_location" description:"The Job Location eg: Seattle, WA"`
	TechnicalSkills string `json:"technical_skills" description:"The Technical Skills required for the job. eg: Python, Java, C++"`
}

// JobRecord is the normalized extraction result returned to callers.
type JobRecord struct {
	Poster          string `json:"Job Poster"`
	Title           string `json:"Job Title"`
	Description     string `json:"Job Description"`
	Location        string `json:"Job Location"`
	TechnicalSkills string `json:"Technical Skills"`
}

// Encode returns the record as a JSON object without HTML escaping, so field values
// read back byte for byte.
func (r JobRecord) Encode() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return "", fmt.Errorf("encode job record: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

var (
	jobInfoSchema = generateSchema[jobInfoArgs]()

	jobInfoTool = gpt.Tool{
		Type: gpt.ToolTypeFunction,
		Function: &gpt.FunctionDefinition{
			Name:        FunctionName,
			Description: functionDescription,
			Parameters:  jobInfoSchema,
		},
	}
)

func generateSchema[T any]() *jsonschema.Definition {
	var v T
	schema, err := jsonschema.GenerateSchemaForType(v)
	if err != nil {
		panic(fmt.Sprintf("GenerateSchemaForType: %v", err))
	}
	return schema
}

// FunctionSchema returns the parameter schema declared for get_job_info.
func FunctionSchema() jsonschema.Definition {
	return *jobInfoSchema
}

// ParseJobInfo decodes function-call arguments into a JobRecord. Every property the
// schema marks as required must be present and hold a string; otherwise the result is
// an ErrSchemaViolation and no record is returned.
func ParseJobInfo(arguments string) (JobRecord, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(arguments), &fields); err != nil {
		return JobRecord{}, fmt.Errorf("%w: decode %s arguments: %v", ErrSchemaViolation, FunctionName, err)
	}

	var missing []string
	for _, name := range jobInfoSchema.Required {
		raw, ok := fields[name]
		if !ok || string(raw) == "null" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return JobRecord{}, fmt.Errorf("%w: %s arguments missing %s", ErrSchemaViolation, FunctionName, strings.Join(missing, ", "))
	}

	var args jobInfoArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return JobRecord{}, fmt.Errorf("%w: decode %s arguments: %v", ErrSchemaViolation, FunctionName, err)
	}

	return JobRecord{
		Poster:          args.JobPoster,
		Title:           args.JobTitle,
		Description:     args.JobDescription,
		Location:        args.JobLocation,
		TechnicalSkills: args.TechnicalSkills,
	}, nil
}
