package engine

// LLM prompt templates — data only, no logic.

// InsightSystemInstruction is the system message for the insight
// extraction stage.
const InsightSystemInstruction = "You are an expert at analyzing educational content and extracting key insights. Always respond with valid JSON."

// QuestionSystemInstruction is the system message for the question
// generation stage.
const QuestionSystemInstruction = "You are an expert quiz creator for educational games. Always respond with valid JSON."

// MoodTitleInstruction is the system message for title classification.
const MoodTitleInstruction = "You are a classifier that categorizes educational video titles. Respond only with the category name."

// MoodSummaryInstruction is the system message for summary classification.
const MoodSummaryInstruction = "You are a classifier that categorizes educational content summaries. Respond only with the category name."

// InsightExtractionPrompt distills a transcript into structured insights.
// Args: title, guest, transcript.
const InsightExtractionPrompt = `You are an expert at extracting key insights from educational podcast transcripts.

Given the following transcript from a Huberman Lab podcast episode, extract the most important and memorable insights that would make good quiz questions.

Video Title: %s
Guest (if any): %s

TRANSCRIPT:
%s

Extract 8-12 key insights that cover:
1. Scientific facts and mechanisms explained
2. Practical protocols or recommendations discussed
3. Surprising or counterintuitive findings mentioned
4. Key definitions or concepts introduced

For each insight, note:
- The core fact or claim
- Any specific numbers, studies, or examples mentioned
- Whether it's more factual or opinion-based

Format your response as a JSON array:
[
  {
    "insight": "Brief description of the key insight",
    "details": "Supporting details, numbers, or examples",
    "type": "factual" or "opinion",
    "topic": "Brief topic category"
  },
  ...
]

Focus on insights that are:
- Specific enough to form clear quiz questions
- Interesting and memorable
- Representative of the episode's main value`

// QuestionGenerationPrompt turns serialized insights into a quiz payload.
// Args: title, guest, insights JSON.
const QuestionGenerationPrompt = `You are creating quiz questions for an educational RPG game.

Topic: %[1]s
Expert/Source: %[2]s

KEY INSIGHTS:
%[3]s

Generate exactly 3 quiz questions based on these insights. Requirements:

1. QUESTION MIX:
   - Include both factual questions (testing knowledge) and opinion-based questions (recommendations)
   - Vary difficulty: 1 easy, 1 medium, 1 hard

2. QUESTION FORMAT:
   - Each question should have exactly 4 options (A, B, C, D)
   - EXACTLY ONE option must be correct - never multiple correct answers
   - Wrong options should be plausible but clearly incorrect
   - Avoid "all of the above" or "none of the above"

3. STYLE - CRITICAL:
   - Questions must be STANDALONE - they should make sense without any context about episodes or discussions
   - DO NOT use phrases like "According to the episode", "In the discussion", "The podcast mentions", "As discussed"
   - Instead, ask direct questions: "What brain region...", "Which protocol is recommended for...", "How does X affect Y?"
   - If referencing expert opinions, use the expert's name: "According to Dr. Matt Walker..." or "Dr. Huberman recommends..."
   - Questions should read like general knowledge questions, not episode summaries

4. ATTRIBUTION:
   - When the insight comes from a specific expert, attribute it: "According to %[2]s..."
   - For general scientific facts, no attribution needed

Output as JSON:
{
  "questions": [
    {
      "id": 1,
      "type": "factual" or "opinion",
      "difficulty": "easy" or "medium" or "hard",
      "question": "The question text (standalone, no episode references)",
      "options": [
        {"id": "a", "text": "Option A text", "correct": true/false},
        {"id": "b", "text": "Option B text", "correct": true/false},
        {"id": "c", "text": "Option C text", "correct": true/false},
        {"id": "d", "text": "Option D text", "correct": true/false}
      ],
      "explanation": "Why the correct answer is right (1-2 sentences)"
    },
    // ... 2 more questions
  ]
}

Make the questions interesting and educational - players should feel they learned something valuable!`

// AudioQuestionPrompt generates summary, takeaways, and questions in one
// pass from podcast audio. No args; the stage prepends the video title.
const AudioQuestionPrompt = `You are creating quiz questions for an educational RPG game based on this podcast audio.

Listen carefully to the entire podcast and generate EXACTLY 3 high-quality quiz questions.

CRITICAL RULE - READ FIRST:
Questions must be STANDALONE and make sense WITHOUT any context about the podcast.
FORBIDDEN phrases (DO NOT USE ANY OF THESE):
- "According to the discussion"
- "According to the episode"
- "In the podcast"
- "The speaker mentions"
- "As discussed"
- "In this episode"
- "The host explains"
Any question containing these phrases is INVALID and must be rewritten.

Requirements:

1. QUESTION MIX:
   - Include both factual questions (testing scientific knowledge) and opinion-based questions (expert recommendations)
   - EXACTLY 3 questions: 1 easy, 1 medium, 1 hard

2. QUESTION FORMAT:
   - Each question should have exactly 4 options (A, B, C, D)
   - EXACTLY ONE option must be correct
   - Wrong options should be plausible but clearly incorrect
   - Avoid "all of the above" or "none of the above"

3. STYLE:
   - Write questions as if they are general knowledge questions, NOT about a specific podcast
   - GOOD: "What brain region controls memory consolidation?"
   - GOOD: "Dr. Huberman recommends which protocol for improving sleep?"
   - BAD: "According to the discussion, what brain region..."
   - BAD: "In this episode, what does the speaker recommend..."

4. CONTENT:
   - Focus on the most important and memorable insights
   - Include scientific facts, practical protocols, and surprising findings
   - Questions should be educational - players should learn something valuable

5. SUMMARY:
   - Provide a comprehensive summary of the podcast's main topic (3-5 sentences)

6. KEY TAKEAWAYS:
   - List the most important actionable insights from the podcast
   - Maximum 10 takeaways, each should be a concise, actionable statement
   - Focus on practical advice, scientific findings, and protocols discussed

Output ONLY valid JSON in this exact format:
{
  "summary": "A comprehensive 3-5 sentence summary of the podcast's main topic and themes.",
  "key_takeaways": [
    "First key takeaway or actionable insight",
    "Second key takeaway",
    "..."
  ],
  "questions": [
    {
      "id": 1,
      "type": "factual",
      "difficulty": "easy",
      "question": "The question text",
      "options": [
        {"id": "a", "text": "Option A", "correct": false},
        {"id": "b", "text": "Option B", "correct": true},
        {"id": "c", "text": "Option C", "correct": false},
        {"id": "d", "text": "Option D", "correct": false}
      ],
      "explanation": "Why the correct answer is right"
    },
    {
      "id": 2,
      "type": "opinion",
      "difficulty": "medium",
      "question": "...",
      "options": [...],
      "explanation": "..."
    },
    {
      "id": 3,
      "type": "factual",
      "difficulty": "hard",
      "question": "...",
      "options": [...],
      "explanation": "..."
    }
  ]
}`

// MoodTitlePrompt classifies a video title into one category.
// Args: bulleted category list, title.
const MoodTitlePrompt = `Classify the following video title into exactly ONE of these categories:

%s

Video title: "%s"

Respond with ONLY the category name, nothing else.`

// MoodSummaryPrompt classifies an episode summary into one category.
// Args: bulleted category list, summary.
const MoodSummaryPrompt = `Classify the following chapter summary into exactly ONE of these categories:

%s

Summary: "%s"

Respond with ONLY the category name, nothing else.`
