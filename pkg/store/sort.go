package store

import (
	"sort"

	"tableflip.dev/barely/pkg/task"
)

func sortTasks(tasks []*task.Task) {
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
}

func sortProjects(projects []*task.Project) {
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
}

func sortColumns(columns []*task.Column) {
	sort.SliceStable(columns, func(i, j int) bool {
		if columns[i].Position == columns[j].Position {
			return columns[i].ID < columns[j].ID
		}
		return columns[i].Position < columns[j].Position
	})
}
