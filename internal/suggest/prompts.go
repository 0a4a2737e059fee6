package suggest

// GeneratePrompt wraps a formatted user prompt for a single-post completion.
const GeneratePrompt = `%s

Respond with exactly one post for X (Twitter) and nothing else: no preamble, no alternatives, no hashtags unless asked for.
If you need to think or plan, put all of that reasoning inside <think></think> tags. Only the text outside those tags will be published.`

// ExtractPrompt asks the model to recover the final answer from a response
// that had nothing left after sanitization.
const ExtractPrompt = `The following response was supposed to contain a single post for X (Twitter), but the final answer could not be found.

RESPONSE:
%s

Reply with only the final post text from that response. Do not add quotes, commentary or reasoning. If no final post is present, write the post the response was working towards.`

// ShortenPrompt asks the model to bring a draft under the length limit.
const ShortenPrompt = `Abbreviate this draft post to %d characters or less. Keep its voice and meaning. Reply with only the shortened post.

DRAFT:
%s`

// RewritePrompt is the instruction template for improving a prompt from
// operator feedback.
const RewritePrompt = `You are an expert prompt engineer. Rewrite the prompt below so that the posts it produces better match what the operator wants, using the feedback table as evidence.

Guidelines:
1. SPECIFIC: Replace vague wording with concrete instructions about subject, length and tone
2. POSITIVE: Say what the post should do rather than listing what to avoid
3. PERSONA: Frame the writer's voice and style explicitly (for example "Write as a wry naturalist...")
4. EXEMPLARS: Where feedback praises or criticizes a style, fold a short example of the desired style into the prompt

ORIGINAL PROMPT:
%s

FEEDBACK ON POSTS THIS PROMPT PRODUCED:
%s

Requirements:
- The rewritten prompt MUST contain the placeholder {context} exactly once, where caller-supplied context will be inserted
- Reply with only the rewritten prompt text, no explanation`
