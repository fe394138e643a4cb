package promptkit_test

import (
	"fmt"

	"github.com/sentinel-rag/promptkit"
)

func ExampleNew() {
	tpl := promptkit.New("greeting", "Hello {name}!")
	fmt.Println(tpl.Variables())
	// Output: [name]
}

func ExampleTemplate_Render() {
	tpl := promptkit.New("greeting", "Hello {name}!")
	out, err := tpl.Render(map[string]string{"name": "World"})
	if err != nil {
		panic(err)
	}
	fmt.Println(out)
	// Output: Hello World!
}

func ExampleTemplate_RenderSafe() {
	tpl := promptkit.New("report", "{{key}}: {value}")
	out, warnings := tpl.RenderSafe(nil)
	fmt.Println(out)
	fmt.Println(warnings[0])
	// Output:
	// {key}: {value}
	// missing variable: value
}

func ExampleValidate() {
	tpl := promptkit.New("bare", "# Prompt: Bare\n# Version: 1.0\n\nno sections here")
	ok, issues := promptkit.Validate(tpl, true)
	fmt.Println(ok, issues[0].Code)
	// Output: false MISSING_HEADER
}
