package tikapi

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// HashtagType marks a textExtra entry as a hashtag.
const HashtagType = 1

// TextExtra is an annotation on a video description. Type 1 entries are
// hashtags.
type TextExtra struct {
	Type        int    `json:"type"`
	HashtagName string `json:"hashtagName"`
}

// SubtitleInfo is one caption track attached to a video.
type SubtitleInfo struct {
	LanguageCodeName string `json:"LanguageCodeName"`
	URL              string `json:"Url"`
	Format           string `json:"Format"`
}

type VideoMedia struct {
	PlayAddr      string         `json:"playAddr"`
	DownloadAddr  string         `json:"downloadAddr"`
	Play          string         `json:"play"`
	Cover         string         `json:"cover"`
	OriginCover   string         `json:"originCover"`
	SubtitleInfos []SubtitleInfo `json:"subtitleInfos"`
}

type Author struct {
	ID       string `json:"id"`
	UniqueID string `json:"uniqueId"`
	Nickname string `json:"nickname"`
}

type Stats struct {
	DiggCount    int64 `json:"diggCount"`
	CommentCount int64 `json:"commentCount"`
}

// RawVideo is a video record as returned by the explore listing.
type RawVideo struct {
	ID        string      `json:"id"`
	ItemID    string      `json:"item_id"`
	Desc      string      `json:"desc"`
	Text      string      `json:"text"`
	TextExtra []TextExtra `json:"textExtra"`
	Video     VideoMedia  `json:"video"`
	Author    Author      `json:"author"`
	Stats     Stats       `json:"stats"`
}

// VideoID returns the video identifier, falling back to item_id.
func (v RawVideo) VideoID() string {
	return firstNonEmpty(v.ID, v.ItemID)
}

// Description returns the caption text, falling back to the text field.
func (v RawVideo) Description() string {
	return firstNonEmpty(v.Desc, v.Text)
}

func (v RawVideo) AuthorName() string {
	if name := firstNonEmpty(v.Author.Nickname, v.Author.UniqueID, v.Author.ID); name != "" {
		return name
	}
	return "Unknown"
}

func (v RawVideo) VideoURL() string {
	return firstNonEmpty(v.Video.PlayAddr, v.Video.DownloadAddr, v.Video.Play)
}

func (v RawVideo) ThumbnailURL() string {
	return firstNonEmpty(v.Video.Cover, v.Video.OriginCover)
}

// HashtagNames lists the names of the video's type-1 annotations.
func (v RawVideo) HashtagNames() []string {
	var names []string
	for _, te := range v.TextExtra {
		if te.Type == HashtagType && te.HashtagName != "" {
			names = append(names, te.HashtagName)
		}
	}
	return names
}

// SubtitleURL returns the URL of the track in the given language, or "".
func (v RawVideo) SubtitleURL(language string) string {
	for _, s := range v.Video.SubtitleInfos {
		if s.LanguageCodeName == language {
			return s.URL
		}
	}
	return ""
}

type CommentUser struct {
	Nickname string `json:"nickname"`
	UniqueID string `json:"unique_id"`
}

// RawComment is one entry of the comment listing.
type RawComment struct {
	CID             string      `json:"cid"`
	Text            string      `json:"text"`
	DiggCount       int64       `json:"digg_count"`
	User            CommentUser `json:"user"`
	CommentLanguage string      `json:"comment_language"`
}

type exploreResponse struct {
	Status   string     `json:"status"`
	Message  string     `json:"message"`
	ItemList []RawVideo `json:"itemList"`
}

type commentsResponse struct {
	Comments []RawComment `json:"comments"`
	HasMore  flag         `json:"has_more"`
	Cursor   int64        `json:"cursor"`
}

// flag decodes has_more, which is sent as either 0/1 or a boolean.
type flag bool

func (f *flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true":
		*f = true
		return nil
	case "false", "null":
		*f = false
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	v, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return err
	}
	*f = v != 0
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
