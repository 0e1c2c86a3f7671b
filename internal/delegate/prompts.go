package delegate

// DefaultOrchestratorTemplate asks the model to analyze a task and emit a
// task list in the tagged format ParseTasks understands. Callers can override
// it via WithTemplates or a prompts file.
const DefaultOrchestratorTemplate = `Analyze this task and break it down into 2-3 distinct approaches:

Task: {task}

Return your response in this format:

<analysis>
Explain your understanding of the task and which variations would be valuable.
Focus on how each approach serves different aspects of the task.
</analysis>

<tasks>
<task>
<type>formal</type>
<description>Write a precise, technical version that emphasizes specifications</description>
</task>
<task>
<type>conversational</type>
<description>Write an engaging, friendly version that connects with readers</description>
</task>
</tasks>`

// DefaultWorkerTemplate generates one subtask's content in the style the
// orchestrator chose for it.
const DefaultWorkerTemplate = `Generate content based on:
Task: {original_task}
Style: {task_type}
Guidelines: {task_description}

Return your response in this format:

<response>
Your content here, maintaining the specified style and fully addressing requirements.
</response>`
