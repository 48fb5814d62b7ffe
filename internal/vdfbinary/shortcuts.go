package vdfbinary

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"strconv"
)

// Shortcut represents a Steam non-Steam game shortcut.
// Fields are ordered for optimal memory alignment.
type Shortcut struct {
	AppName  string
	Exe      string
	Icon     string
	StartDir string
	Tags     []string
	AppID    uint32
	IsHidden bool
}

// ParseShortcuts parses Steam's shortcuts.vdf binary format.
// Tags, icon, and IsHidden are treated as optional fields to handle shortcuts
// created by third-party tools like EmuDeck/Lutris.
func ParseShortcuts(buf io.Reader) ([]Shortcut, error) {
	vdf, err := Parse(buf)
	if err != nil {
		return []Shortcut{}, err
	}

	shortcutsMap, ok := vdf.GetMap("shortcuts")
	if !ok {
		return []Shortcut{}, errors.New("could not find 'shortcuts' in parsed vdf")
	}

	shortcuts := make([]Shortcut, len(shortcutsMap))

	for i := range shortcuts {
		key := strconv.Itoa(i)

		s, ok := shortcutsMap[key]
		if !ok {
			return []Shortcut{}, errors.New("vdf that should be an array does not have the corresponding index")
		}

		appID, ok := s.GetUint("appid")
		if !ok {
			return []Shortcut{}, errors.New("could not get key 'appid' for one of the shortcuts")
		}

		appName, ok := s.GetString("AppName")
		if !ok {
			return []Shortcut{}, errors.New("could not get key 'AppName' for one of the shortcuts")
		}

		exe, ok := s.GetString("Exe")
		if !ok {
			return []Shortcut{}, errors.New("could not get key 'Exe' for one of the shortcuts")
		}

		startDir, ok := s.GetString("StartDir")
		if !ok {
			return []Shortcut{}, errors.New("could not get key 'StartDir' for one of the shortcuts")
		}

		// icon is optional - some shortcuts don't have an icon set
		icon, _ := s.GetString("icon")

		// IsHidden is optional - defaults to false if not present
		isHidden, _ := s.GetBool("IsHidden")

		// tags is optional - shortcuts from EmuDeck/Lutris may not have tags
		var tags []string
		if tagsMap, ok := s.GetMap("tags"); ok {
			for j := range len(tagsMap) {
				tagKey := strconv.Itoa(j)
				t, ok := tagsMap[tagKey]
				if !ok {
					break
				}
				ts, ok := t.AsString()
				if !ok {
					continue
				}
				tags = append(tags, ts)
			}
		}

		shortcuts[i] = Shortcut{
			AppID:    appID,
			AppName:  appName,
			Exe:      exe,
			Icon:     icon,
			IsHidden: isHidden,
			StartDir: startDir,
			Tags:     tags,
		}
	}

	return shortcuts, nil
}

// WriteShortcuts serializes shortcuts back to Steam's binary shortcuts.vdf
// format, writing the canonical field set Steam itself produces so the result
// stays readable by the Steam client and by ParseShortcuts.
func WriteShortcuts(w io.Writer, shortcuts []Shortcut) error {
	buf := bufio.NewWriter(w)

	writeMapKey(buf, "shortcuts")
	for i, s := range shortcuts {
		writeMapKey(buf, strconv.Itoa(i))

		writeNumber(buf, "appid", s.AppID)
		writeString(buf, "AppName", s.AppName)
		writeString(buf, "Exe", s.Exe)
		writeString(buf, "StartDir", s.StartDir)
		writeString(buf, "icon", s.Icon)
		writeString(buf, "ShortcutPath", "")
		writeString(buf, "LaunchOptions", "")
		writeNumber(buf, "IsHidden", boolToUint(s.IsHidden))
		writeNumber(buf, "AllowDesktopConfig", 1)
		writeNumber(buf, "AllowOverlay", 1)
		writeNumber(buf, "OpenVR", 0)
		writeNumber(buf, "Devkit", 0)
		writeString(buf, "DevkitGameID", "")
		writeNumber(buf, "LastPlayTime", 0)

		writeMapKey(buf, "tags")
		for j, tag := range s.Tags {
			writeString(buf, strconv.Itoa(j), tag)
		}
		buf.WriteByte(vdfMarkerEndOfMap)

		buf.WriteByte(vdfMarkerEndOfMap)
	}
	buf.WriteByte(vdfMarkerEndOfMap)
	buf.WriteByte(vdfMarkerEndOfMap)

	if err := buf.Flush(); err != nil {
		return err //nolint:wrapcheck // io error passed through unchanged
	}
	return nil
}

func writeMapKey(buf *bufio.Writer, key string) {
	buf.WriteByte(vdfMarkerMap)
	buf.WriteString(key)
	buf.WriteByte(vdfMarkerEndOfString)
}

func writeString(buf *bufio.Writer, key, value string) {
	buf.WriteByte(vdfMarkerString)
	buf.WriteString(key)
	buf.WriteByte(vdfMarkerEndOfString)
	buf.WriteString(value)
	buf.WriteByte(vdfMarkerEndOfString)
}

func writeNumber(buf *bufio.Writer, key string, value uint32) {
	buf.WriteByte(vdfMarkerNumber)
	buf.WriteString(key)
	buf.WriteByte(vdfMarkerEndOfString)
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], value)
	buf.Write(b[:])
}

func boolToUint(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
