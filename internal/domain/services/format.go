package services

import (
	"os"
	"strings"
)

// agsURLMarkers identify ArcGIS service endpoints. AGS detection drives
// tool selection downstream, so URL evidence is authoritative.
var agsURLMarkers = []string{
	"/mapserver/", "/featureserver/", "/imageserver/", "/geoprocessingserver/",
	"arcgis/rest/services", "server/rest/services",
}

// extensionFormats maps clearly identifiable URL suffixes to formats.
var extensionFormats = []struct {
	suffix string
	format string
}{
	{".csv", "CSV"},
	{".kml", "KML"},
	{".kmz", "KML"},
	{".pdf", "PDF"},
	{".accdb", "ACCDB"},
	{".mdb", "MDB"},
	{".xls", "XLS"},
	{".xlsx", "XLS"},
	{".txt", "TXT"},
	{".tif", "GeoTIFF"},
	{".tiff", "GeoTIFF"},
}

// FormatFromURL detects a record format from its source URL. Most
// geospatial downloads are zipped shapefiles, so SHP is the default for
// anything not clearly something else.
func FormatFromURL(url string) string {
	if strings.TrimSpace(url) == "" {
		return ""
	}
	lower := strings.ToLower(url)

	for _, marker := range agsURLMarkers {
		if strings.Contains(lower, marker) {
			return "AGS"
		}
	}
	if strings.Contains(lower, "wmts") {
		return "WMTS"
	}
	if strings.Contains(lower, "wms") || strings.Contains(lower, "getcapabilities") {
		return "WMS"
	}
	for _, ext := range extensionFormats {
		if strings.HasSuffix(lower, ext.suffix) {
			return ext.format
		}
	}
	return "SHP"
}

// FormatFromFiles detects a format from the file extensions present in a
// downloaded-data directory. GeoJSON output marks an AGS extraction.
func FormatFromFiles(dir string) string {
	if dir == "" {
		return ""
	}
	fileEntries, err := os.ReadDir(dir)
	if err != nil || len(fileEntries) == 0 {
		return ""
	}

	exts := make(map[string]bool)
	for _, e := range fileEntries {
		name := e.Name()
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			exts[strings.ToLower(name[i+1:])] = true
		}
	}

	switch {
	case exts["geojson"]:
		return "AGS"
	case exts["shp"] || exts["gdb"]:
		return "SHP"
	case exts["csv"]:
		return "CSV"
	case exts["kml"]:
		return "KML"
	case exts["accdb"]:
		return "ACCDB"
	case exts["mdb"]:
		return "MDB"
	case exts["xls"] || exts["xlsx"]:
		return "XLS"
	case exts["tif"] || exts["tiff"]:
		return "GeoTIFF"
	case exts["txt"]:
		return "TXT"
	case exts["pdf"]:
		return "PDF"
	}
	return "SHP"
}

// BestFormat combines URL and file evidence. AGS evidence wins from either
// side; specific file formats beat the URL default.
func BestFormat(url, dir string) string {
	urlFormat := FormatFromURL(url)
	if urlFormat == "AGS" {
		return "AGS"
	}
	fileFormat := FormatFromFiles(dir)
	if fileFormat == "AGS" {
		return "AGS"
	}
	switch fileFormat {
	case "CSV", "KML", "PDF", "GeoTIFF", "TXT", "MDB", "ACCDB", "XLS":
		return fileFormat
	}
	if urlFormat != "" {
		return urlFormat
	}
	return "SHP"
}
