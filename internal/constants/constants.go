package constants

// 站点语言常量
const (
	LocaleZH = "zh"
	LocaleEN = "en"
)

// SupportedLocales 站点支持的语言，首项为默认语言
var SupportedLocales = []string{LocaleZH, LocaleEN}

// 媒体类型常量
const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
)

// 媒体存储键前缀
const (
	MediaPrefixPostImages = "posts/images"
	MediaPrefixPostVideos = "posts/videos"
)

// 媒体存储驱动
const (
	MediaDriverLocal = "local"
	MediaDriverMinIO = "minio"
)

// 预览引用前缀
const (
	PreviewRefPrefix  = "blob:"
	DataURLPrefix     = "data:"
	DefaultMediaType  = "application/octet-stream"
	DefaultFilename   = "download"
	FallbackExtension = "dat"
)

// 图库视图模式
const (
	ViewModeGrid = "grid"
	ViewModeList = "list"
)

// 可复制字段
const (
	CopyFieldTitle     = "title"
	CopyFieldContent   = "content"
	CopyFieldHashtags  = "hashtags"
	CopyFieldManimCode = "manim_code"
	CopyFieldShareLink = "share_link"
)

// 队列与任务常量
const (
	QueueDefault                    = "default"
	QueueCritical                   = "critical"
	TaskTutorApplicationEmail       = "tutor_application:email"
	TutorAttachmentPhotoPrefix      = "photo-"
	TutorAttachmentTranscriptPrefix = "transcript-"
)

// 页面路径
const (
	GalleryPath    = "/upload/videos"
	EditPathPrefix = "/upload/edit/"
	VideoPathPart  = "/videos/"
)
