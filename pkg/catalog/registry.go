package catalog

// Category names. Categories group keys sharing a menu and are implied by
// key prefixes (see prefixCategories).
const (
	CategoryGeneral   = "general"
	CategoryLeech     = "leech"
	CategoryQbit      = "qbittorrent"
	CategoryRclone    = "rclone"
	CategoryGdrive    = "gdrive"
	CategoryWatermark = "watermark"
	CategoryMerge     = "merge"
	CategoryAdd       = "add"
	CategoryMetadata  = "metadata"
	CategoryTools     = "tools"
)

// MediaToolsKey is the enabled-set key controlling which media tools are
// available. Disabling a member cascade-resets that tool's own settings.
const MediaToolsKey = "MEDIA_TOOLS_ENABLED"

// AllMediaTools lists every sub-feature name that can appear in the
// MEDIA_TOOLS_ENABLED set, sorted.
func AllMediaTools() []string {
	return []string{
		"add", "compression", "convert", "extract", "merge", "metadata",
		"sample", "screenshot", "trim", "watermark", "xtra",
	}
}

// ToolPrefixes maps a media tool to the key prefixes of its dependent
// settings. Disabling the tool resets every key under these prefixes.
func ToolPrefixes(tool string) []string {
	switch tool {
	case "watermark":
		return []string{"WATERMARK_", "AUDIO_WATERMARK_", "SUBTITLE_WATERMARK_", "IMAGE_WATERMARK_"}
	case "merge":
		return []string{"MERGE_", "CONCAT_DEMUXER_", "FILTER_COMPLEX_"}
	case "add":
		return []string{"ADD_"}
	case "metadata":
		return []string{"METADATA_"}
	case "xtra":
		return []string{"FFMPEG_CMDS"}
	default:
		// convert, compression, trim, extract, sample, screenshot carry no
		// dedicated keys in this catalog.
		return nil
	}
}

// prefixCategories maps key prefixes to categories. Longer prefixes are
// listed before shorter ones so AUDIO_WATERMARK_ wins over WATERMARK_.
var prefixCategories = []struct {
	prefix   string
	category string
}{
	{"AUDIO_WATERMARK_", CategoryWatermark},
	{"SUBTITLE_WATERMARK_", CategoryWatermark},
	{"IMAGE_WATERMARK_", CategoryWatermark},
	{"WATERMARK_", CategoryWatermark},
	{"CONCAT_DEMUXER_", CategoryMerge},
	{"FILTER_COMPLEX_", CategoryMerge},
	{"MERGE_", CategoryMerge},
	{"ADD_", CategoryAdd},
	{"METADATA_", CategoryMetadata},
	{"MEDIA_TOOLS_", CategoryTools},
	{"FFMPEG_", CategoryTools},
	{"LEECH_", CategoryLeech},
	{"AS_DOCUMENT", CategoryLeech},
	{"EQUAL_SPLITS", CategoryLeech},
	{"MEDIA_GROUP", CategoryLeech},
	{"THUMBNAIL_", CategoryLeech},
	{"UPLOAD_PATHS", CategoryLeech},
	{"TORRENT_", CategoryQbit},
	{"QBIT_", CategoryQbit},
	{"RCLONE_", CategoryRclone},
	{"GDRIVE_", CategoryGdrive},
	{"TOKEN_PICKLE", CategoryGdrive},
	{"INDEX_URL", CategoryGdrive},
}

// CategoryForKey derives the category implied by a key's prefix.
// Keys matching no prefix belong to the general category.
func CategoryForKey(key string) string {
	for _, pc := range prefixCategories {
		if len(key) >= len(pc.prefix) && key[:len(pc.prefix)] == pc.prefix {
			return pc.category
		}
	}
	return CategoryGeneral
}

func def(key string, t Type, dflt any, help string) Descriptor {
	return Descriptor{Key: key, Type: t, Default: dflt, Category: CategoryForKey(key), Help: help}
}

func (d Descriptor) sensitive() Descriptor        { d.Sensitive = true; return d }
func (d Descriptor) paired(key string) Descriptor { d.PairedKey = key; return d }
func (d Descriptor) unit() Descriptor             { d.UnitRange = true; return d }
func (d Descriptor) blob(k BlobKind) Descriptor   { d.Blob = k; return d }

// Registry returns the full descriptor table. Help strings here are the short
// form; the long per-key help text lives with the menus that show it.
func Registry() []Descriptor {
	return []Descriptor{
		// General
		def("CMD_SUFFIX", TypeString, "", "Suffix appended to every bot command").sensitive(),
		def("OWNER_ID", TypeInt, 0, "Telegram/Discord ID of the bot owner").sensitive(),
		def("AUTHORIZED_CHATS", TypeString, "", "Space-separated chat IDs allowed to use the bot"),
		def("EXCLUDED_EXTENSIONS", TypeString, "", "Extensions skipped during transfers"),
		def("DEFAULT_UPLOAD", TypeString, "rc", "Default upload destination (rc or gd)"),
		def("BASE_URL", TypeString, "", "Public base URL for the file server").sensitive(),
		def("BASE_URL_PORT", TypeInt, 80, "Port the file server listens on"),
		def("STATUS_UPDATE_INTERVAL", TypeInt, 15, "Seconds between status message refreshes"),
		def("QUEUE_ALL", TypeInt, 0, "Max concurrent tasks (0 = unlimited)"),
		def("QUEUE_DOWNLOAD", TypeInt, 0, "Max concurrent downloads (0 = unlimited)"),
		def("QUEUE_UPLOAD", TypeInt, 0, "Max concurrent uploads (0 = unlimited)"),
		def("NAME_SUBSTITUTE", TypeString, "", "Filename substitution expression"),
		def("INCOMPLETE_TASK_NOTIFIER", TypeBool, false, "Notify about incomplete tasks after restart"),

		// Leech
		def("AS_DOCUMENT", TypeBool, false, "Send leeched files as documents instead of media"),
		def("EQUAL_SPLITS", TypeBool, false, "Split files into parts of equal size"),
		def("MEDIA_GROUP", TypeBool, false, "Group split parts into a media album"),
		def("LEECH_SPLIT_SIZE", TypeInt, 2097152000, "Split size in bytes for leeched files"),
		def("LEECH_FILENAME_PREFIX", TypeString, "", "Prefix added to leeched filenames"),
		def("LEECH_SUFFIX", TypeString, "", "Suffix added to leeched filenames"),
		def("LEECH_FILENAME", TypeString, "", "Template overriding the leeched filename"),
		def("LEECH_FONT", TypeString, "", "Font style applied to leech captions"),
		def("LEECH_DUMP_CHAT", TypeStringList, []string{}, "Chats that receive a copy of every leech"),
		def("THUMBNAIL_LAYOUT", TypeString, "", "Grid layout for generated thumbnails (e.g. 3x3)"),
		def("UPLOAD_PATHS", TypeStringMap, map[string]string{}, "Named upload path shortcuts"),

		// qBittorrent
		def("TORRENT_TIMEOUT", TypeInt, 0, "Seconds before a dead torrent is abandoned"),
		def("QBIT_MAX_RATIO", TypeFloat, 0.0, "Seed ratio limit (0 = client default)"),
		def("QBIT_MAX_SEEDING_TIME", TypeInt, 0, "Seeding time limit in minutes (0 = client default)"),

		// Rclone
		def("RCLONE_PATH", TypeString, "", "Default rclone destination path"),
		def("RCLONE_FLAGS", TypeString, "", "Extra flags passed to rclone transfers"),
		def("RCLONE_SERVE_URL", TypeString, "", "Base URL of the rclone serve daemon").sensitive(),
		def("RCLONE_SERVE_PORT", TypeInt, 0, "Port for the rclone serve daemon"),
		def("RCLONE_CONFIG", TypeString, "", "Uploaded rclone.conf used for transfers").sensitive().blob(BlobDocument),

		// Google Drive
		def("GDRIVE_ID", TypeString, "", "Folder or Team Drive ID uploads default to"),
		def("INDEX_URL", TypeString, "", "Index URL appended to upload links"),
		def("TOKEN_PICKLE", TypeString, "", "Uploaded credentials token for Drive access").sensitive().blob(BlobDocument),

		// Watermark
		def("WATERMARK_ENABLED", TypeBool, false, "Apply the text watermark to processed media"),
		def("WATERMARK_KEY", TypeString, "", "Watermark text"),
		def("WATERMARK_POSITION", TypeString, "none", "Corner or edge the watermark is drawn at"),
		def("WATERMARK_SIZE", TypeInt, 0, "Watermark font size (0 = auto)"),
		def("WATERMARK_COLOR", TypeString, "none", "Watermark font color"),
		def("WATERMARK_FONT", TypeString, "none", "Watermark font file"),
		def("WATERMARK_PRIORITY", TypeInt, 2, "Pipeline priority of the watermark step"),
		def("WATERMARK_THREADING", TypeBool, true, "Run watermarking on multiple threads"),
		def("WATERMARK_THREAD_NUMBER", TypeInt, 4, "Thread count for watermarking"),
		def("WATERMARK_QUALITY", TypeString, "none", "Output quality preset"),
		def("WATERMARK_SPEED", TypeString, "none", "Encoder speed preset"),
		def("WATERMARK_OPACITY", TypeFloat, 0.0, "Watermark opacity").unit(),
		def("WATERMARK_REMOVE_ORIGINAL", TypeBool, true, "Delete the source file after watermarking"),
		def("AUDIO_WATERMARK_VOLUME", TypeFloat, 0.0, "Relative volume of the audio watermark").unit(),
		def("AUDIO_WATERMARK_INTERVAL", TypeInt, 0, "Seconds between audio watermark repeats"),
		def("SUBTITLE_WATERMARK_STYLE", TypeString, "none", "Subtitle watermark style"),
		def("SUBTITLE_WATERMARK_INTERVAL", TypeInt, 0, "Seconds between subtitle watermark repeats"),
		def("IMAGE_WATERMARK_ENABLED", TypeBool, false, "Overlay an image watermark"),
		def("IMAGE_WATERMARK_PATH", TypeString, "", "Uploaded watermark image").blob(BlobPhoto),
		def("IMAGE_WATERMARK_SCALE", TypeInt, 10, "Image watermark scale in percent"),
		def("IMAGE_WATERMARK_OPACITY", TypeFloat, 1.0, "Image watermark opacity").unit(),
		def("IMAGE_WATERMARK_POSITION", TypeString, "bottom_right", "Image watermark placement"),

		// Merge
		def("MERGE_ENABLED", TypeBool, false, "Enable the merge pipeline"),
		def("MERGE_PRIORITY", TypeInt, 1, "Pipeline priority of the merge step"),
		def("MERGE_THREADING", TypeBool, true, "Run merges on multiple threads"),
		def("MERGE_THREAD_NUMBER", TypeInt, 4, "Thread count for merging"),
		def("MERGE_REMOVE_ORIGINAL", TypeBool, true, "Delete source files after merging"),
		def("CONCAT_DEMUXER_ENABLED", TypeBool, true, "Merge using the concat demuxer").paired("FILTER_COMPLEX_ENABLED"),
		def("FILTER_COMPLEX_ENABLED", TypeBool, false, "Merge using a filter_complex graph").paired("CONCAT_DEMUXER_ENABLED"),
		def("MERGE_OUTPUT_FORMAT_VIDEO", TypeString, "none", "Container for merged video"),
		def("MERGE_OUTPUT_FORMAT_AUDIO", TypeString, "none", "Container for merged audio"),
		def("MERGE_VIDEO_CODEC", TypeString, "none", "Codec for merged video"),
		def("MERGE_AUDIO_CODEC", TypeString, "none", "Codec for merged audio"),

		// Add (track add/replace)
		def("ADD_ENABLED", TypeBool, false, "Enable the track add pipeline"),
		def("ADD_PRIORITY", TypeInt, 7, "Pipeline priority of the add step"),
		def("ADD_DELETE_ORIGINAL", TypeBool, true, "Delete source files after adding tracks"),
		def("ADD_PRESERVE_TRACKS", TypeBool, false, "Keep existing tracks when adding new ones").paired("ADD_REPLACE_TRACKS"),
		def("ADD_REPLACE_TRACKS", TypeBool, false, "Replace existing tracks with new ones").paired("ADD_PRESERVE_TRACKS"),

		// Metadata
		def("METADATA_ALL", TypeString, "", "Value applied to every metadata field"),
		def("METADATA_TITLE", TypeString, "", "Title metadata for processed files"),
		def("METADATA_AUTHOR", TypeString, "", "Author metadata for processed files"),
		def("METADATA_KEY", TypeString, "", "Legacy metadata key"),

		// Tools
		{
			Key:      MediaToolsKey,
			Type:     TypeString,
			Default:  JoinSet(AllMediaTools()),
			Category: CategoryTools,
			Help:     "Comma-joined set of enabled media tools",
			Members:  AllMediaTools(),
		},
		def("FFMPEG_CMDS", TypeStringMap, map[string]string{}, "Named custom ffmpeg command lines"),
	}
}
