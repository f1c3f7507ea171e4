// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output raw JSON",
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a config file and initialize the local cache database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
			},
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent migration instead of applying pending ones",
			},
		},
		Action: r.Setup,
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the reference remote data service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address, defaults to server.host:server.port",
			},
			&cli.StringFlag{
				Name:  "catalog",
				Usage: "Path to a catalog JSON file, defaults to the built-in sample",
			},
		},
		Action: r.Serve,
	}
}

func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Open the interactive player",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "track",
				Usage: "Play a single track by id without the interactive interface",
			},
			&cli.StringFlag{
				Name:  "genre",
				Usage: "Restrict the catalog to a genre",
			},
			&cli.StringFlag{
				Name:  "engine",
				Usage: "Playback engine: browser or log",
			},
		},
		Action: r.Play,
	}
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recently played tracks",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of tracks to show",
				Value: 20,
			},
			jsonFlag(),
		},
		Action: r.History,
		Commands: []*cli.Command{
			{
				Name:   "clear",
				Usage:  "Clear recently played tracks (anonymous sessions only)",
				Action: r.HistoryClear,
			},
		},
	}
}

func favoritesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "List and toggle favorite tracks",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List favorite tracks",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.FavoritesList,
			},
			{
				Name:      "toggle",
				Usage:     "Add or remove a track from favorites",
				Arguments: []cli.Argument{&cli.StringArg{Name: "track-id"}},
				Action:    r.FavoritesToggle,
			},
		},
	}
}

func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Manage playlists",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List playlists",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.PlaylistsList,
			},
			{
				Name:      "create",
				Usage:     "Create a playlist",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "Playlist description",
					},
					&cli.BoolFlag{
						Name:  "public",
						Usage: "Make the playlist public",
					},
				},
				Action: r.PlaylistsCreate,
			},
			{
				Name:  "add",
				Usage: "Add a track to a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "playlist-id"},
					&cli.StringArg{Name: "track-id"},
				},
				Action: r.PlaylistsAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove a track from a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "playlist-id"},
					&cli.StringArg{Name: "track-id"},
				},
				Action: r.PlaylistsRemove,
			},
			{
				Name:      "delete",
				Usage:     "Delete a playlist",
				Arguments: []cli.Argument{&cli.StringArg{Name: "playlist-id"}},
				Action:    r.PlaylistsDelete,
			},
		},
	}
}

func tagsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tags",
		Usage: "Manage track tags",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List tags",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "track",
						Usage: "Only show tags associated with this track",
					},
					jsonFlag(),
				},
				Action: r.TagsList,
			},
			{
				Name:      "create",
				Usage:     "Create a tag",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "color",
						Usage: "Tag color",
						Value: "#888888",
					},
				},
				Action: r.TagsCreate,
			},
			{
				Name:  "add",
				Usage: "Tag a track",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "tag-id"},
					&cli.StringArg{Name: "track-id"},
				},
				Action: r.TagsAdd,
			},
			{
				Name:  "remove",
				Usage: "Untag a track",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "tag-id"},
					&cli.StringArg{Name: "track-id"},
				},
				Action: r.TagsRemove,
			},
			{
				Name:      "delete",
				Usage:     "Delete a tag",
				Arguments: []cli.Argument{&cli.StringArg{Name: "tag-id"}},
				Action:    r.TagsDelete,
			},
		},
	}
}

func genresCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "genres",
		Usage: "Manage genres and the home layout",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List genres in display order",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.GenresList,
			},
			{
				Name:      "create",
				Usage:     "Create a genre",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "Genre description",
					},
				},
				Action: r.GenresCreate,
			},
			{
				Name:  "add",
				Usage: "Add a track to a genre",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "genre-id"},
					&cli.StringArg{Name: "track-id"},
				},
				Action: r.GenresAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove a track from a genre",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "genre-id"},
					&cli.StringArg{Name: "track-id"},
				},
				Action: r.GenresRemove,
			},
			{
				Name:      "delete",
				Usage:     "Delete a genre",
				Arguments: []cli.Argument{&cli.StringArg{Name: "genre-id"}},
				Action:    r.GenresDelete,
			},
			{
				Name:      "reorder",
				Usage:     "Set the genre display order",
				ArgsUsage: "<genre-id>...",
				Action:    r.GenresReorder,
			},
			{
				Name:      "layout",
				Usage:     "Show or set the genres shown on the home screen",
				ArgsUsage: "[genre-id...]",
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.GenresLayout,
			},
		},
	}
}

func feedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "feed",
		Usage: "Show the social feed",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "filter",
				Aliases: []string{"f"},
				Usage:   "Feed filter: all, following or trending",
				Value:   "all",
			},
			jsonFlag(),
		},
		Action: r.Feed,
	}
}

func socialCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "social",
		Usage: "Post, like, comment and follow",
		Commands: []*cli.Command{
			{
				Name:      "post",
				Usage:     "Publish a post",
				Arguments: []cli.Argument{&cli.StringArg{Name: "content"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "track",
						Usage: "Attach a track by id",
					},
					&cli.StringFlag{
						Name:  "playlist",
						Usage: "Attach a playlist by id",
					},
					&cli.StringFlag{
						Name:  "visibility",
						Usage: "public, followers or private",
						Value: "public",
					},
				},
				Action: r.SocialPost,
			},
			{
				Name:      "like",
				Usage:     "Like or unlike a post",
				Arguments: []cli.Argument{&cli.StringArg{Name: "post-id"}},
				Action:    r.SocialLike,
			},
			{
				Name:  "comment",
				Usage: "Comment on a post",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "post-id"},
					&cli.StringArg{Name: "content"},
				},
				Action: r.SocialComment,
			},
			{
				Name:  "reply",
				Usage: "Reply to a comment",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "post-id"},
					&cli.StringArg{Name: "comment-id"},
					&cli.StringArg{Name: "content"},
				},
				Action: r.SocialReply,
			},
			{
				Name:      "follow",
				Usage:     "Follow a user",
				Arguments: []cli.Argument{&cli.StringArg{Name: "user-id"}},
				Action:    r.SocialFollow,
			},
			{
				Name:      "unfollow",
				Usage:     "Unfollow a user",
				Arguments: []cli.Argument{&cli.StringArg{Name: "user-id"}},
				Action:    r.SocialUnfollow,
			},
			{
				Name:   "following",
				Usage:  "List followed users",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.SocialFollowing,
			},
		},
	}
}

func exportCommand(r *Runner) *cli.Command {
	formatFlags := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: csv, markdown, text or json",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to this file instead of stdout",
			},
		}
	}

	return &cli.Command{
		Name:  "export",
		Usage: "Export library data",
		Commands: []*cli.Command{
			{
				Name:   "history",
				Usage:  "Export recently played tracks",
				Flags:  formatFlags(),
				Action: r.ExportHistory,
			},
			{
				Name:   "favorites",
				Usage:  "Export favorite tracks",
				Flags:  formatFlags(),
				Action: r.ExportFavorites,
			},
			{
				Name:      "playlist",
				Usage:     "Export a playlist",
				Arguments: []cli.Argument{&cli.StringArg{Name: "playlist-id"}},
				Flags:     formatFlags(),
				Action:    r.ExportPlaylist,
			},
			{
				Name:  "all",
				Usage: "Export every playlist to its own file with a manifest",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: csv, markdown, text or json",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Output directory, defaults to groove_export_{epoch}",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent writers",
						Value: 4,
					},
				},
				Action: r.ExportAll,
			},
			{
				Name:  "plays",
				Usage: "Export the full local play log",
				Flags: append(formatFlags(), &cli.IntFlag{
					Name:  "limit",
					Usage: "Maximum number of plays, 0 for all",
				}),
				Action: r.ExportPlays,
			},
		},
	}
}

// apiCommand makes direct calls to the remote data service
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the remote data service",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
			{
				Name:  "dump",
				Usage: "Dump the caller's full remote state",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
					&cli.StringFlag{
						Name:  "save",
						Usage: "Also write the dump to this file",
					},
				},
				Action: r.APIDump,
			},
		},
	}
}
