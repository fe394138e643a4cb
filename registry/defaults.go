package registry

// DefaultEntries returns the fixed catalog for the Sentinel analysis
// pipeline. Callers pass it to New at bootstrap; a template file with no
// entry here is still loadable but gets DefaultParams.
func DefaultEntries() []Entry {
	return []Entry{
		{
			Name:           "image_analysis",
			Category:       CategoryAnalysis,
			Description:    "Analyze sensor imagery (radar, sonar, satellite) to extract tactical information",
			FileName:       "image_analysis.txt",
			ExpectedOutput: "Structured markdown with sections for sensor type, objects, patterns, anomalies",
			UseCases: []string{
				"Initial image processing",
				"Sensor data interpretation",
				"Object detection and classification",
			},
			ModelRequirements: "GPT-4V or equivalent vision model",
			Params:            map[string]any{"temperature": 0.0, "max_tokens": 1024},
		},
		{
			Name:           "retrieval_query",
			Category:       CategoryRetrieval,
			Description:    "Generate search queries for knowledge base retrieval based on image analysis",
			FileName:       "retrieval_query.txt",
			ExpectedOutput: "2-3 concise search queries",
			UseCases: []string{
				"RAG query generation",
				"Context retrieval preparation",
			},
			ModelRequirements: "GPT-4 or equivalent text model",
			Params:            map[string]any{"temperature": 0.3, "max_tokens": 256},
		},
		{
			Name:           "tactical_assessment",
			Category:       CategorySynthesis,
			Description:    "Synthesize image analysis and historical context into actionable intelligence",
			FileName:       "tactical_assessment.txt",
			ExpectedOutput: "JSON object with threat_level, observations, intent_analysis, recommendations",
			UseCases: []string{
				"Final intelligence synthesis",
				"Threat assessment generation",
				"Command briefing preparation",
			},
			ModelRequirements: "GPT-4 or equivalent text model",
			Params:            map[string]any{"temperature": 0.0, "max_tokens": 1024},
		},
		{
			Name:           "follow_up",
			Category:       CategoryChat,
			Description:    "Answer follow-up questions about tactical assessments",
			FileName:       "follow_up.txt",
			ExpectedOutput: "Conversational response with context-aware information",
			UseCases: []string{
				"Chat interaction",
				"Clarification requests",
				"Deep-dive questions",
			},
			ModelRequirements: "GPT-4 or equivalent text model",
			Params:            map[string]any{"temperature": 0.3, "max_tokens": 512},
		},
		{
			Name:           "disambiguation",
			Category:       CategorySystem,
			Description:    "Clarify ambiguous user queries or sensor data",
			FileName:       "disambiguation.txt",
			ExpectedOutput: "Clarifying questions or interpretation options",
			UseCases: []string{
				"Handling unclear requests",
				"Multiple interpretation scenarios",
			},
			ModelRequirements: "GPT-4 or equivalent text model",
			Params:            map[string]any{"temperature": 0.3, "max_tokens": 256},
		},
		{
			Name:           "error_fallback",
			Category:       CategoryError,
			Description:    "Generate graceful responses when analysis fails or is unavailable",
			FileName:       "error_fallback.txt",
			ExpectedOutput: "Helpful error message with next steps",
			UseCases: []string{
				"API failures",
				"Degraded mode operation",
				"Unsupported inputs",
			},
			Params: map[string]any{"temperature": 0.0, "max_tokens": 256},
		},
		{
			Name:           "system_context",
			Category:       CategorySystem,
			Description:    "Establish system-wide context and behavioral guidelines",
			FileName:       "system_context.txt",
			ExpectedOutput: "Contextual framing for all subsequent interactions",
			UseCases: []string{
				"Session initialization",
				"System identity establishment",
				"Behavioral guideline enforcement",
			},
			ModelRequirements: "GPT-4 or equivalent",
			Params:            map[string]any{"temperature": 0.0, "max_tokens": 512},
		},
	}
}
