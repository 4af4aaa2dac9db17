package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/jinford/sonorize/internal/core/transcription"
)

// JobsListAction はジョブ一覧を表示するコマンドのアクション
func JobsListAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	statusStr := cmd.String("status")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	var jobs []*transcription.Job
	if statusStr != "" {
		jobs, err = appCtx.Container.Service.ListJobsByStatus(ctx, transcription.JobStatus(statusStr))
	} else {
		jobs, err = appCtx.Container.Service.ListJobs(ctx)
	}
	if err != nil {
		return fmt.Errorf("ジョブの取得に失敗: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("ジョブはありません")
		return nil
	}

	// テーブル表示
	renderJobsTable(jobs)

	return nil
}

// JobsShowAction はジョブ詳細を表示するコマンドのアクション
func JobsShowAction(ctx context.Context, cmd *cli.Command) error {
	idStr := cmd.String("id")
	envFile := cmd.String("env")

	id, err := uuid.Parse(idStr)
	if err != nil {
		return fmt.Errorf("--id はUUID形式で指定してください: %w", err)
	}

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	job, err := appCtx.Container.Service.GetJob(ctx, id)
	if err != nil {
		return fmt.Errorf("ジョブの取得に失敗: %w", err)
	}

	// 詳細表示
	renderJobDetail(job)

	return nil
}

// JobsReconcileAction はPENDINGのまま残っているジョブを再投入するコマンドのアクション
func JobsReconcileAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	// ワーカープールを起動してから再投入する
	appCtx.Container.Start(ctx)

	count, err := appCtx.Container.Service.ReconcilePending(ctx)
	if err != nil {
		return fmt.Errorf("ジョブの再投入に失敗: %w", err)
	}

	fmt.Printf("%d 件のジョブを再投入しました\n", count)

	return nil
}

// renderJobsTable はテーブル形式でジョブ一覧を表示します
func renderJobsTable(jobs []*transcription.Job) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Source", "Status", "Created At")

	for _, job := range jobs {
		table.Append(
			job.ID.String(),
			truncateString(job.SourceRef, 50),
			string(job.Status),
			job.CreatedAt.Format("2006-01-02 15:04"),
		)
	}

	table.Render()
}

// renderJobDetail はジョブの詳細を表示します
func renderJobDetail(job *transcription.Job) {
	fmt.Printf("\n=== ジョブ詳細 ===\n\n")
	fmt.Printf("ID:          %s\n", job.ID)
	fmt.Printf("Source:      %s\n", job.SourceRef)
	fmt.Printf("Status:      %s\n", job.Status)
	fmt.Printf("Created At:  %s\n", job.CreatedAt.Format(time.RFC3339))
	fmt.Printf("Updated At:  %s\n", job.UpdatedAt.Format(time.RFC3339))

	if job.Status == transcription.StatusCompleted {
		fmt.Printf("\n文字起こし結果:\n%s\n", job.ResultText)
	}

	fmt.Println()
}

// truncateString は文字列を指定された文字数に切り詰めます。
// マルチバイト文字を途中で分断しないよう、バイトではなくルーン単位で数える。
func truncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
