package archive

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mgpai22/sourceplan/internal/subtitle"
)

const (
	TextFileName          = "text.txt"
	MetaFileName          = "meta.json"
	URLsFileName          = "urls.txt"
	ManifestFileName      = "manifest.csv"
	DefaultTranscriptName = "full.srt"
	defaultArchiveBase    = "srt-source"
)

// ErrCollision is returned under CollisionReject when two segments map to
// the same folder name.
var ErrCollision = errors.New("numbering token collision")

// CollisionPolicy decides what happens when two segments start at the same
// millisecond and therefore share a numbering token.
type CollisionPolicy string

const (
	// later segments get "<token>-<index>"
	CollisionSuffix CollisionPolicy = "suffix"
	// the later segment replaces the earlier folder contents
	CollisionOverwrite CollisionPolicy = "overwrite"
	CollisionReject    CollisionPolicy = "reject"
)

func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch p := CollisionPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return CollisionSuffix, nil
	case CollisionSuffix, CollisionOverwrite, CollisionReject:
		return p, nil
	default:
		return "", fmt.Errorf(
			"unsupported collision policy %q: use suffix, overwrite, or reject",
			s,
		)
	}
}

type Options struct {
	Collision      CollisionPolicy
	TranscriptName string
}

func DefaultOptions() Options {
	return Options{
		Collision:      CollisionSuffix,
		TranscriptName: DefaultTranscriptName,
	}
}

// Entry is one file of the archive tree. Directories are implied by the
// slash-separated Name.
type Entry struct {
	Name string
	Data []byte

	removed bool
}

// Tree is the ordered file set of an export. Rewriting an existing name keeps
// its original position.
type Tree struct {
	entries []Entry
	pos     map[string]int
	folders []string
}

func newTree() *Tree {
	return &Tree{pos: make(map[string]int)}
}

// Entries returns the files of the tree in archive order.
func (t *Tree) Entries() []Entry {
	return t.files()
}

// Folders lists the per-segment folder names in creation order.
func (t *Tree) Folders() []string {
	out := make([]string, len(t.folders))
	copy(out, t.folders)
	return out
}

// Lookup returns the contents of the named file.
func (t *Tree) Lookup(name string) ([]byte, bool) {
	i, ok := t.pos[name]
	if !ok || t.entries[i].removed {
		return nil, false
	}
	return t.entries[i].Data, true
}

func (t *Tree) put(name string, data []byte) {
	if i, ok := t.pos[name]; ok {
		t.entries[i] = Entry{Name: name, Data: data}
		return
	}
	t.pos[name] = len(t.entries)
	t.entries = append(t.entries, Entry{Name: name, Data: data})
}

// remove drops a file while keeping its slot, so a later rewrite lands at
// the same position.
func (t *Tree) remove(name string) {
	if i, ok := t.pos[name]; ok {
		t.entries[i] = Entry{Name: name, removed: true}
	}
}

func (t *Tree) files() []Entry {
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		if !e.removed {
			out = append(out, e)
		}
	}
	return out
}

// Assemble lays out the export tree for segments in order: one folder per
// segment, then the manifest and the reconstructed transcript.
func Assemble(segments []subtitle.Segment, opts Options) (*Tree, error) {
	if opts.Collision == "" {
		opts.Collision = CollisionSuffix
	}
	if opts.TranscriptName == "" {
		opts.TranscriptName = DefaultTranscriptName
	}

	tree := newTree()
	owners := make(map[string]int)

	for _, seg := range segments {
		folder, err := folderFor(seg, owners, opts.Collision)
		if err != nil {
			return nil, err
		}
		if _, seen := owners[folder]; !seen {
			tree.folders = append(tree.folders, folder)
		}
		owners[folder] = seg.Index

		meta, err := metaJSON(seg)
		if err != nil {
			return nil, fmt.Errorf("failed to encode metadata for segment %d: %w", seg.Index, err)
		}

		tree.put(folder+"/"+TextFileName, []byte(seg.Text))
		tree.put(folder+"/"+MetaFileName, meta)
		if len(seg.ReferenceLinks) > 0 {
			tree.put(folder+"/"+URLsFileName, []byte(urlsText(seg.ReferenceLinks)))
		} else {
			tree.remove(folder + "/" + URLsFileName)
		}
	}

	tree.put(ManifestFileName, []byte(manifestCSV(segments)))

	if _, clash := tree.pos[opts.TranscriptName]; clash {
		return nil, fmt.Errorf("transcript name %q collides with an archive file", opts.TranscriptName)
	}
	if _, clash := owners[opts.TranscriptName]; clash {
		return nil, fmt.Errorf("transcript name %q collides with a segment folder", opts.TranscriptName)
	}
	tree.put(opts.TranscriptName, []byte(subtitle.FormatTranscript(segments)))

	return tree, nil
}

func folderFor(
	seg subtitle.Segment,
	owners map[string]int,
	policy CollisionPolicy,
) (string, error) {
	token := subtitle.NumberingToken(seg.StartMs, seg.EndMs)
	owner, taken := owners[token]
	if !taken {
		return token, nil
	}

	switch policy {
	case CollisionOverwrite:
		return token, nil
	case CollisionReject:
		return "", fmt.Errorf(
			"%w: segments %d and %d both map to folder %s",
			ErrCollision,
			owner,
			seg.Index,
			token,
		)
	}

	name := token + "-" + strconv.Itoa(seg.Index)
	for n := 2; ; n++ {
		if _, used := owners[name]; !used {
			return name, nil
		}
		name = fmt.Sprintf("%s-%d-%d", token, seg.Index, n)
	}
}

// FileName derives the download name of an export from the transcript path.
func FileName(sourcePath string) string {
	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = defaultArchiveBase
	}
	return base + "_export.zip"
}
