package task

import (
	"gopkg.in/yaml.v3"

	"github.com/kazz187/taskboard/pkg/cerr"
)

// ParseImportFile reads a task import file. The document is either a list of
// tasks or a mapping with a "tasks" list. JSON files parse as YAML.
func ParseImportFile(data []byte) ([]CreateInput, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, cerr.NewError(cerr.InvalidArgument, "invalid import file", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, cerr.NewError(cerr.InvalidArgument, "import file is empty", nil)
	}

	var inputs []CreateInput
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&inputs); err != nil {
			return nil, cerr.NewError(cerr.InvalidArgument, "invalid import file", err)
		}
	case yaml.MappingNode:
		var wrapped struct {
			Tasks []CreateInput `yaml:"tasks"`
		}
		if err := root.Decode(&wrapped); err != nil {
			return nil, cerr.NewError(cerr.InvalidArgument, "invalid import file", err)
		}
		inputs = wrapped.Tasks
	default:
		return nil, cerr.NewError(cerr.InvalidArgument, "import file must hold a list of tasks", nil)
	}
	return inputs, nil
}
