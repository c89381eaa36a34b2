package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/ibheros/studio/internal/constants"
	"github.com/ibheros/studio/internal/gallery"
	"github.com/ibheros/studio/internal/logger"
	"github.com/ibheros/studio/internal/models"
)

const usage = `studioctl 视频库命令行

用法:
  studioctl [flags] login <username> <password>
  studioctl [flags] list
  studioctl [flags] show <id>
  studioctl [flags] toggle <id>
  studioctl [flags] share <id>
  studioctl [flags] copy <id> <title|content|hashtags|manim_code>
  studioctl [flags] edit <id>
  studioctl [flags] download <id> [video|image]

flags:
`

type options struct {
	server  string
	token   string
	lang    string
	view    string
	dir     string
	verbose bool
}

func main() {
	var opts options
	env := envDefaults()
	fs := flag.NewFlagSet("studioctl", flag.ExitOnError)
	fs.StringVar(&opts.server, "server", env.GetString("server"), "API 地址")
	fs.StringVar(&opts.token, "token", env.GetString("token"), "管理端令牌")
	fs.StringVar(&opts.lang, "lang", env.GetString("lang"), "语言: zh, en")
	fs.StringVar(&opts.view, "view", env.GetString("view"), "列表视图: grid, list")
	fs.StringVar(&opts.dir, "dir", env.GetString("dir"), "下载保存目录")
	fs.BoolVar(&opts.verbose, "v", false, "输出调试日志")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}
	if opts.verbose {
		logger.Init("debug", logger.Options{})
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts, fs.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, args []string) error {
	client := gallery.NewAPIClient(opts.server, opts.token, nil)
	cmd, rest := args[0], args[1:]

	if cmd == "login" {
		if len(rest) != 2 {
			return errors.New("usage: login <username> <password>")
		}
		if err := client.Login(ctx, rest[0], rest[1]); err != nil {
			return err
		}
		fmt.Println(client.Token())
		return nil
	}

	browser := gallery.New(gallery.Deps{
		Source:     client,
		Downloader: client,
		Clipboard:  gallery.OSC52Clipboard{Out: os.Stdout},
		Prompter:   gallery.WriterPrompter{Out: os.Stdout},
		Sharer:     gallery.NoShare{},
		Saver:      gallery.DirSaver{Dir: opts.dir},
		Navigator:  gallery.WriterNavigator{Out: os.Stdout, Origin: strings.TrimRight(opts.server, "/")},
		Origin:     opts.server,
	})

	switch cmd {
	case "list":
		browser.Load(ctx)
		browser.SetViewMode(opts.view)
		printPosts(browser.Posts(), browser.ViewMode(), opts.lang)
		return nil
	case "show", "toggle", "share", "copy", "edit", "download":
		if len(rest) == 0 {
			return fmt.Errorf("usage: %s <id>", cmd)
		}
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	found, err := browser.Select(ctx, rest[0])
	if err != nil {
		return err
	}
	if !found {
		return errors.New("video not found")
	}
	post, _ := browser.Selected()

	switch cmd {
	case "show":
		printDetail(post, opts.lang)
	case "toggle":
		updated, err := browser.ToggleUsed(ctx)
		if err != nil {
			return err
		}
		if updated != nil {
			fmt.Printf("%s used=%t\n", updated.ID, updated.IsUsed)
		}
	case "share":
		if _, err := browser.Share(ctx, opts.lang); err != nil {
			return err
		}
	case "copy":
		if len(rest) < 2 {
			return errors.New("usage: copy <id> <field>")
		}
		text, ok := copyText(post, rest[1])
		if !ok {
			return fmt.Errorf("unknown field %q", rest[1])
		}
		browser.Copy(ctx, rest[1], text)
		fmt.Println()
	case "edit":
		return browser.Edit(opts.lang)
	case "download":
		kind := constants.MediaKindVideo
		if len(rest) > 1 {
			kind = rest[1]
		}
		return downloadMedia(ctx, browser, post, kind)
	}
	return nil
}

func downloadMedia(ctx context.Context, browser *gallery.Browser, post models.Post, kind string) error {
	url, ext := post.VideoURL, "mp4"
	if kind == constants.MediaKindImage {
		url, ext = post.CoverImageURL, "png"
	}
	if url == "" {
		return fmt.Errorf("post has no %s", kind)
	}
	filename := post.Title + "." + ext
	if err := browser.Download(ctx, url, filename); err != nil {
		return err
	}
	fmt.Println("saved", filename)
	return nil
}

func copyText(post models.Post, field string) (string, bool) {
	switch field {
	case constants.CopyFieldTitle:
		return post.Title, true
	case constants.CopyFieldContent:
		return post.Content, true
	case constants.CopyFieldHashtags:
		return post.Hashtags, true
	case constants.CopyFieldManimCode:
		return post.ManimCode, post.ManimCode != ""
	}
	return "", false
}

func printPosts(posts []models.Post, view, lang string) {
	if len(posts) == 0 {
		fmt.Println("no videos")
		return
	}
	if view == constants.ViewModeList {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tDATE\tHASHTAGS\tUSED")
		for _, post := range posts {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", post.ID, post.Title, gallery.FormatDate(post.CreatedAt, lang), gallery.SummaryHashtags(post.Hashtags), usedMark(post.IsUsed))
		}
		_ = w.Flush()
		return
	}
	for _, post := range posts {
		fmt.Printf("[%s] %s %s\n  %s\n  %s\n\n", usedMark(post.IsUsed), post.Title, gallery.FormatDate(post.CreatedAt, lang), post.Content, strings.Join(gallery.ParseHashtags(post.Hashtags), " "))
	}
}

func printDetail(post models.Post, lang string) {
	fmt.Printf("%s\n%s\n\n%s\n", post.Title, gallery.FormatDate(post.CreatedAt, lang), post.Content)
	if tags := gallery.ParseHashtags(post.Hashtags); len(tags) > 0 {
		fmt.Println(strings.Join(tags, " "))
	}
	if post.VideoURL != "" {
		fmt.Println("video:", post.VideoURL)
	}
	if post.CoverImageURL != "" {
		fmt.Println("image:", post.CoverImageURL)
	}
	if post.ReferenceLink != "" {
		fmt.Println("reference:", post.ReferenceLink)
	}
	if post.ManimCode != "" {
		fmt.Printf("\n%s\n", post.ManimCode)
	}
	fmt.Println("used:", post.IsUsed)
}

func usedMark(used bool) string {
	if used {
		return "x"
	}
	return " "
}
