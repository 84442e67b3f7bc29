package generator

const rewriteSystemPrompt = `You are a prompt engineer. You turn rough prompt ideas into prompts people paste into ChatGPT or Claude.`

const rewriteUserPrompt = `Transform this idea into a clear, specific prompt that a user could paste directly into ChatGPT or Claude.
Keep it to one or two sentences. Return only the prompt text, without quotes or commentary.

Idea: %s`

const authorSystemPrompt = `You are a helpful assistant that generates AI prompts based on topics.`

const authorUserPrompt = `Create an AI prompt related to %s. Return it in this JSON format without any other text:
{
  "title": "A catchy title for the prompt",
  "promptText": "The detailed prompt text that would be sent to an AI",
  "exampleOutput": "An example of what the AI might output for this prompt",
  "category": "One of: Business, Development, Marketing, Design, Content, Data, Education, Entertainment, Lifestyle, Professional",
  "keywords": ["keyword1", "keyword2", "keyword3"]
}`

const categorySystemPrompt = `You are a helpful assistant that generates multiple AI prompts based on categories.`

const categoryUserPrompt = `Create %d AI prompts related to the %s category. Return them in this JSON format without any other text:
[
  {
    "title": "A catchy title for the prompt",
    "promptText": "The detailed prompt text that would be sent to an AI",
    "exampleOutput": "An example of what the AI might output for this prompt",
    "category": "%s",
    "keywords": ["keyword1", "keyword2", "keyword3"]
  }
]`

const enhanceSystemPrompt = `You are a helpful assistant that enhances AI prompts to make them more effective.`

const enhanceUserPrompt = `Enhance this AI prompt to make it more effective, detailed, and likely to produce better results:
"%s"

Return only the enhanced prompt text without any additional commentary.`
