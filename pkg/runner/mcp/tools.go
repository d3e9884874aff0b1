package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/barely/pkg/app"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerListTasksTool(srv, svc)
	registerAddTaskTool(srv, svc)
	registerPullTasksTool(srv, svc)
	registerCompleteTasksTool(srv, svc)
	registerSetContextTool(srv, svc)
	registerGetContextTool(srv, svc)
	registerUndoLastTool(srv, svc)
}

func registerListTasksTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_tasks",
		mcp.WithDescription("List tasks in the session context, ascending by id."),
		mcp.WithBoolean("all",
			mcp.Description("Ignore the session context."),
		),
		mcp.WithBoolean("archived",
			mcp.Description("Include completed tasks."),
		),
		mcp.WithString("project",
			mcp.Description("Project name or id overriding the context project."),
		),
		mcp.WithString("scope",
			mcp.Description("Scope overriding the context scope."),
			mcp.Enum("backlog", "week", "today", "archived"),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			All      bool   `json:"all"`
			Archived bool   `json:"archived"`
			Project  string `json:"project"`
			Scope    string `json:"scope"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		tasks, err := svc.ListTasks(ctx, ListTasksOptions(args))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"tasks": tasks,
			"count": len(tasks),
		})
	})
}

func registerAddTaskTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"add_task",
		mcp.WithDescription("Create a task. New tasks go to the backlog unless a scope is given."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Task title."),
		),
		mcp.WithString("description",
			mcp.Description("Optional longer description."),
		),
		mcp.WithString("project",
			mcp.Description("Optional project name or id."),
		),
		mcp.WithString("scope",
			mcp.Description("Optional scope for the new task."),
			mcp.Enum("backlog", "week", "today"),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Project     string `json:"project"`
			Scope       string `json:"scope"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		dto, err := svc.AddTask(ctx, AddTaskOptions(args))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerPullTasksTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"pull_tasks",
		mcp.WithDescription("Move tasks into backlog, week or today. All ids are checked before anything changes."),
		mcp.WithString("ids",
			mcp.Required(),
			mcp.Description("Comma separated task ids, e.g. \"3,4\"."),
		),
		mcp.WithString("scope",
			mcp.Required(),
			mcp.Description("Target scope."),
			mcp.Enum("backlog", "week", "today"),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := request.RequireString("ids")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		scope, err := request.RequireString("scope")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		ids, err := app.ParseIDs(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		tasks, err := svc.PullTasks(ctx, ids, scope)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"tasks": tasks,
			"count": len(tasks),
		})
	})
}

func registerCompleteTasksTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"complete_tasks",
		mcp.WithDescription("Mark tasks done and archive them."),
		mcp.WithString("ids",
			mcp.Required(),
			mcp.Description("Comma separated task ids."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := request.RequireString("ids")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		ids, err := app.ParseIDs(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		tasks, err := svc.CompleteTasks(ctx, ids)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"tasks": tasks,
			"count": len(tasks),
		})
	})
}

func registerSetContextTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"set_context",
		mcp.WithDescription("Narrow later calls to a project and/or scope. Use \"none\" to clear a part."),
		mcp.WithString("project",
			mcp.Description("Project name or id, or none."),
		),
		mcp.WithString("scope",
			mcp.Description("Scope, or all."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Project string `json:"project"`
			Scope   string `json:"scope"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		dto, err := svc.SetContext(ctx, args.Project, args.Scope)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerGetContextTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_context",
		mcp.WithDescription("Show the current session context."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dto, err := svc.GetContext()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerUndoLastTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"undo_last",
		mcp.WithDescription("Reverse the most recent change made in this session."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		r, err := svc.UndoLast(ctx)
		if errors.Is(err, app.ErrNoHistory) {
			return mcp.NewToolResultText("nothing to undo"), nil
		}
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(r)
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
