package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/zippyboards/backend/internal/board"
	"github.com/zippyboards/backend/internal/model"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show a project board and move tasks",
}

var (
	boardFilter string
	boardSort   string
	boardDir    string
)

func loadBoard(cmd *cobra.Command, projectID string) (*board.Manager, error) {
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
	m := board.NewManager(newClient(), projectID, board.WithLogger(logger))
	if err := m.LoadTasks(cmd.Context()); err != nil {
		return nil, fmt.Errorf("%s", m.Err())
	}
	return m, nil
}

var boardShowCmd = &cobra.Command{
	Use:   "show PROJECT_ID",
	Short: "Print the board lanes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := board.ParseFilter(boardFilter)
		if err != nil {
			return err
		}
		key, err := board.ParseSortKey(boardSort)
		if err != nil {
			return err
		}
		dir, err := board.ParseDirection(boardDir)
		if err != nil {
			return err
		}

		m, err := loadBoard(cmd, args[0])
		if err != nil {
			return err
		}
		m.ApplyFilter(filter)
		printLanes(cmd.OutOrStdout(), m.ApplySort(key, dir))
		return nil
	},
}

func printLanes(w io.Writer, lanes board.Lanes) {
	for _, lane := range model.Lanes {
		fmt.Fprintf(w, "%s (%d)\n", lane, len(lanes[lane]))
		for i, t := range lanes[lane] {
			due := ""
			if t.DueDate != nil {
				due = " due " + t.DueDate.Format("2006-01-02")
			}
			fmt.Fprintf(w, "  %d. [%s] %s  %s%s\n", i, t.Priority, t.Title, t.ID, due)
		}
	}
}

var moveIndex int

var boardMoveCmd = &cobra.Command{
	Use:   "move PROJECT_ID TASK_ID LANE",
	Short: "Move a task to another lane",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		toLane, err := model.ParseLane(args[2])
		if err != nil {
			return err
		}
		m, err := loadBoard(cmd, args[0])
		if err != nil {
			return err
		}
		fromLane, fromIndex, ok := m.Locate(args[1])
		if !ok {
			return fmt.Errorf("task %s is not on this board", args[1])
		}
		toIndex := moveIndex
		if toIndex < 0 {
			toIndex = len(m.Lanes()[toLane])
			if toLane == fromLane {
				toIndex--
			}
		}

		if err := m.MoveTask(cmd.Context(), args[1], fromLane, fromIndex, toLane, toIndex); err != nil {
			return err
		}
		m.Wait()

		if lane, _, _ := m.Locate(args[1]); lane != toLane {
			return fmt.Errorf("move of %s was not saved", args[1])
		}
		if msg := m.Err(); msg != "" {
			return fmt.Errorf("%s", msg)
		}
		printLanes(cmd.OutOrStdout(), m.View())
		return nil
	},
}

func init() {
	boardShowCmd.Flags().StringVar(&boardFilter, "filter", "all", "all, assigned, unassigned or overdue")
	boardShowCmd.Flags().StringVar(&boardSort, "sort", "created_at", "created_at, due_date, priority or title")
	boardShowCmd.Flags().StringVar(&boardDir, "dir", "desc", "asc or desc")
	boardMoveCmd.Flags().IntVar(&moveIndex, "index", -1, "position in the target lane (default: end)")
	boardCmd.AddCommand(boardShowCmd, boardMoveCmd)
}
