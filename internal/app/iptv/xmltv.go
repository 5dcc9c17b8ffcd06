package iptv

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strconv"
)

const (
	xmltvGenInfoName = "iptv-proxy"
	xmltvLang        = "chi"
)

// XmlEPG XMLTV格式的EPG
type XmlEPG struct {
	XMLName           xml.Name          `xml:"tv"`
	GeneratorInfoName string            `xml:"generator-info-name,attr,omitempty"`
	SourceInfoName    string            `xml:"source-info-name,attr,omitempty"`
	Channels          []XmlEPGChannel   `xml:"channel,omitempty"`
	Programmes        []XmlEPGProgramme `xml:"programme,omitempty"`
}

type XmlEPGChannel struct {
	Id           string          `xml:"id,attr"`
	DisplayNames []XmlEPGDisplay `xml:"display-name"`
}

type XmlEPGProgramme struct {
	Start     string          `xml:"start,attr"`
	Stop      string          `xml:"stop,attr"`
	Channel   string          `xml:"channel,attr"`
	Titles    []XmlEPGDisplay `xml:"title"`
	SubTitles []XmlEPGDisplay `xml:"sub-title,omitempty"`
	Descs     []XmlEPGDisplay `xml:"desc,omitempty"`
}

type XmlEPGDisplay struct {
	Lang  string `xml:"lang,attr,omitempty"`
	Value string `xml:",chardata"`
}

// ToXmlEPG 将频道节目单转为xmltv结构，extra为需要合并的外部EPG
func ToXmlEPG(channels []Channel, extra *XmlEPG) *XmlEPG {
	xmlEPG := &XmlEPG{
		GeneratorInfoName: xmltvGenInfoName,
		SourceInfoName:    xmltvGenInfoName,
		Channels:          make([]XmlEPGChannel, 0, len(channels)),
	}

	for _, channel := range channels {
		xmlEPG.Channels = append(xmlEPG.Channels, XmlEPGChannel{
			Id:           strconv.FormatUint(channel.ID, 10),
			DisplayNames: []XmlEPGDisplay{{Value: channel.Name}},
		})
	}

	if extra != nil {
		xmlEPG.Channels = append(xmlEPG.Channels, extra.Channels...)
		xmlEPG.Programmes = append(xmlEPG.Programmes, extra.Programmes...)
	}

	for _, channel := range channels {
		channelId := strconv.FormatUint(channel.ID, 10)
		for _, program := range channel.Programs {
			// 跳过结束时间早于开始时间的节目
			if program.Stop < program.Start {
				continue
			}

			programme := XmlEPGProgramme{
				Start:   FormatXMLTVTime(program.Start),
				Stop:    FormatXMLTVTime(program.Stop),
				Channel: channelId,
				Titles:  []XmlEPGDisplay{{Lang: xmltvLang, Value: program.Title}},
			}
			if program.Desc != "" {
				programme.Descs = []XmlEPGDisplay{{Value: program.Desc}}
			}
			xmlEPG.Programmes = append(xmlEPG.Programmes, programme)
		}
	}
	return xmlEPG
}

// ToXMLTVFormat 转换为XMLTV格式内容
func ToXMLTVFormat(channels []Channel, extra *XmlEPG) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	encoder := xml.NewEncoder(&buf)
	if err := encoder.Encode(ToXmlEPG(channels, extra)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ParseXmlEPG 解析外部的XMLTV内容，只保留频道和节目信息，非中文标题会被丢弃
func ParseXmlEPG(r io.Reader) (*XmlEPG, error) {
	var xmlEPG XmlEPG
	decoder := xml.NewDecoder(r)
	// 不展开实体
	decoder.Entity = make(map[string]string)
	if err := decoder.Decode(&xmlEPG); err != nil && !errors.Is(err, io.EOF) {
		return nil, NewError(ErrDecode, "decode xmltv", err)
	}

	for i := range xmlEPG.Programmes {
		titles := xmlEPG.Programmes[i].Titles[:0]
		for _, title := range xmlEPG.Programmes[i].Titles {
			if title.Lang == "" || title.Lang == xmltvLang {
				titles = append(titles, title)
			}
		}
		xmlEPG.Programmes[i].Titles = titles
	}
	return &xmlEPG, nil
}
