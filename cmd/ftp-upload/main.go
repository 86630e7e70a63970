// Command ftp-upload copies a local file to the game server over FTP
// with the same FTP_* settings the poller uses.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"

	"farmwatch/internal/config"
	"farmwatch/internal/gameserver"
	"farmwatch/internal/logging"

	"github.com/rs/zerolog/log"
)

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadGame()
	if err != nil {
		log.Fatal().Err(err).Msg("load game config failed")
	}

	flag.StringVar(&cfg.FTPHost, "host", cfg.FTPHost, "FTP server host")
	flag.IntVar(&cfg.FTPPort, "port", cfg.FTPPort, "FTP server port")
	flag.StringVar(&cfg.FTPUser, "user", cfg.FTPUser, "FTP username")
	flag.StringVar(&cfg.FTPPass, "password", cfg.FTPPass, "FTP password")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <local_file> <remote_path>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}
	var missing []string
	for name, v := range map[string]string{"host": cfg.FTPHost, "user": cfg.FTPUser, "password": cfg.FTPPass} {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		fmt.Fprintf(os.Stderr, "missing required connection info: %v\n", missing)
		os.Exit(2)
	}
	localFile, remotePath := flag.Arg(0), flag.Arg(1)

	f, err := os.Open(localFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", localFile).Msg("open local file failed")
	}
	defer f.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := gameserver.Upload(ctx, gameserver.NewFTPDialer(cfg), remotePath, f); err != nil {
		log.Fatal().Err(err).Str("remote", remotePath).Msg("upload failed")
	}
	log.Info().Str("file", localFile).Str("remote", remotePath).Msg("uploaded")
}
