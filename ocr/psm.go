package ocr

// PageSegMode represents page segmentation modes for OCR.
// These control how Tesseract analyzes the image layout.
type PageSegMode int

// Page segmentation modes, numbered as Tesseract numbers them.
const (
	PSM_OSD_ONLY               PageSegMode = 0  // Orientation and script detection only
	PSM_AUTO_OSD               PageSegMode = 1  // Automatic with OSD
	PSM_AUTO_ONLY              PageSegMode = 2  // Automatic, no OSD or OCR
	PSM_AUTO                   PageSegMode = 3  // Fully automatic (default)
	PSM_SINGLE_COLUMN          PageSegMode = 4  // Single column of variable sizes
	PSM_SINGLE_BLOCK_VERT_TEXT PageSegMode = 5  // Single uniform block of vertically aligned text
	PSM_SINGLE_BLOCK           PageSegMode = 6  // Single uniform block of text
	PSM_SINGLE_LINE            PageSegMode = 7  // Single text line
	PSM_SINGLE_WORD            PageSegMode = 8  // Single word
	PSM_CIRCLE_WORD            PageSegMode = 9  // Single word in a circle
	PSM_SINGLE_CHAR            PageSegMode = 10 // Single character
	PSM_SPARSE_TEXT            PageSegMode = 11 // Find as much text as possible
	PSM_SPARSE_TEXT_OSD        PageSegMode = 12 // Sparse text with OSD
	PSM_RAW_LINE               PageSegMode = 13 // Treat image as single text line
)

// ParsePageSegMode maps a mode name such as "auto" or "single-line" to its
// value. Unknown names map to PSM_AUTO and false.
func ParsePageSegMode(name string) (PageSegMode, bool) {
	mode, ok := pageSegModeNames[name]
	if !ok {
		return PSM_AUTO, false
	}
	return mode, true
}

var pageSegModeNames = map[string]PageSegMode{
	"auto":         PSM_AUTO,
	"single-block": PSM_SINGLE_BLOCK,
	"single-line":  PSM_SINGLE_LINE,
	"single-word":  PSM_SINGLE_WORD,
	"sparse":       PSM_SPARSE_TEXT,
	"raw-line":     PSM_RAW_LINE,
}
