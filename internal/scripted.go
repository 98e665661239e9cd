package internal

import (
	"context"
	"strings"
)

// ScriptedClient is a ModelClient that replays canned stage responses. It
// backs the server when no API key is configured and keeps tests hermetic.
type ScriptedClient struct {
	// Responses overrides the canned response per stage when set.
	Responses map[string]string

	// DeltaSize controls how many characters each streamed delta carries.
	DeltaSize int
}

// NewScriptedClient returns a client replaying the built-in counter app.
func NewScriptedClient() *ScriptedClient {
	return &ScriptedClient{DeltaSize: 40}
}

// Stream replays the stage's scripted response as a sequence of deltas and
// returns the full text as the final response.
func (c *ScriptedClient) Stream(ctx context.Context, req ModelRequest, emit func(delta string) error) (string, error) {
	text, ok := c.Responses[req.Stage]
	if !ok {
		text, ok = scriptedResponses[req.Stage]
	}
	if !ok {
		text = "Done."
	}

	size := c.DeltaSize
	if size <= 0 {
		size = 40
	}

	for i := 0; i < len(text); i += size {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		end := i + size
		if end > len(text) {
			end = len(text)
		}
		if err := emit(text[i:end]); err != nil {
			return "", err
		}
	}

	return text, nil
}

var scriptedResponses = map[string]string{
	StagePlanning: `Planning: a single App component holding a numeric count in state,
with increment and decrement buttons and a centered stylesheet.`,

	StageCodeGenerator: "Generating the code.\n\n" +
		"```jsx src/App.jsx\n" + scriptedAppJSX + "\n```\n\n" +
		"```css src/App.css\n" + scriptedAppCSS + "\n```",

	StageReview: `Reviewing the generated code. Braces are balanced, className is used
throughout and no list rendering is present, so no key props are required.`,
}

var scriptedAppJSX = strings.TrimSpace(`
import React, { useState } from 'react';
import './App.css';

function App() {
  const [count, setCount] = useState(0);

  return (
    <div className="App">
      <h1>Counter Application</h1>
      <p>Current count: {count}</p>
      <button onClick={() => setCount(count + 1)}>
        Increment
      </button>
      <button onClick={() => setCount(count - 1)}>
        Decrement
      </button>
    </div>
  );
}

export default App;
`)

var scriptedAppCSS = strings.TrimSpace(`
.App {
  text-align: center;
  padding: 50px;
  font-family: Arial, sans-serif;
}

h1 {
  color: #333;
  margin-bottom: 20px;
}

button {
  margin: 10px;
  padding: 10px 20px;
  font-size: 16px;
  cursor: pointer;
  background-color: #007bff;
  color: white;
  border: none;
  border-radius: 5px;
}

button:hover {
  background-color: #0056b3;
}
`)
