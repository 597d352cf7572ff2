package grader

import "github.com/santhosh-tekuri/jsonschema/v5"

// Schemas enforce the upstream contract at the boundary. They pin down the
// fields the core depends on and the numeric scales of the two score
// levels; unknown extra fields are allowed so upstream can evolve.

const submissionSchemaJSON = `{
	"type": "object",
	"required": ["id", "assignment_id", "student_id", "submitted_at", "responses"],
	"properties": {
		"id": {"type": "integer"},
		"assignment_id": {"type": "integer"},
		"student_id": {"type": "integer"},
		"submitted_at": {"type": "string"},
		"ai_score": {"type": ["number", "null"], "minimum": 0, "maximum": 100},
		"teacher_score": {"type": ["number", "null"], "minimum": 0, "maximum": 100},
		"responses": {
			"type": "array",
			"items": {"$ref": "#/$defs/response"}
		}
	},
	"$defs": {
		"response": {
			"type": "object",
			"required": ["id", "question_id", "type", "student_answer"],
			"properties": {
				"id": {"type": "integer"},
				"question_id": {"type": "integer"},
				"type": {"enum": ["mcq", "short"]},
				"student_answer": {"type": "string"},
				"ai_score": {"type": ["number", "null"], "minimum": 0, "maximum": 1},
				"teacher_score": {"type": ["number", "null"], "minimum": 0, "maximum": 1},
				"matched_keywords": {"type": "array", "items": {"type": "string"}},
				"rubric_keywords": {"type": "array", "items": {"type": "string"}},
				"is_mcq_correct": {"type": ["boolean", "null"]}
			}
		}
	}
}`

const responseSchemaJSON = `{
	"type": "object",
	"required": ["id", "question_id", "type", "student_answer"],
	"properties": {
		"id": {"type": "integer"},
		"question_id": {"type": "integer"},
		"type": {"enum": ["mcq", "short"]},
		"student_answer": {"type": "string"},
		"ai_score": {"type": ["number", "null"], "minimum": 0, "maximum": 1},
		"teacher_score": {"type": ["number", "null"], "minimum": 0, "maximum": 1}
	}
}`

const recommendationsSchemaJSON = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["lesson_id", "title"],
		"properties": {
			"lesson_id": {"type": "integer"},
			"title": {"type": "string"},
			"skill_tags": {"type": "array", "items": {"type": "string"}}
		}
	}
}`

const misconceptionsSchemaJSON = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["label", "count", "examples"],
		"properties": {
			"label": {"type": "string"},
			"count": {"type": "integer", "minimum": 0},
			"examples": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["student_answer"],
					"properties": {
						"student_answer": {"type": "string"},
						"question_prompt": {"type": "string"},
						"score": {"type": ["number", "null"]}
					}
				}
			},
			"suggested_skill_tags": {"type": "array", "items": {"type": "string"}}
		}
	}
}`

var (
	submissionSchema      = jsonschema.MustCompileString("submission.json", submissionSchemaJSON)
	responseSchema        = jsonschema.MustCompileString("response.json", responseSchemaJSON)
	recommendationsSchema = jsonschema.MustCompileString("recommendations.json", recommendationsSchemaJSON)
	misconceptionsSchema  = jsonschema.MustCompileString("misconceptions.json", misconceptionsSchemaJSON)
)
