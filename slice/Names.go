package slice

import (
	"github.com/poppolopoppo/icebuilder/internal/base"
)

var LogSlice = base.NewLogCategory("Slice")

const (
	SLICE_EXT  = ".ice"
	CSHARP_EXT = ".cs"

	DEFAULT_CPP_SOURCE_EXT = ".cpp"
	DEFAULT_CPP_HEADER_EXT = ".h"
	DEFAULT_OUTPUT_DIR     = "."

	// property group holding the settings edited by the property page
	PROPERTY_GROUP_LABEL = "IceBuilder"

	// item type of Slice inputs
	SLICE_ITEM_TYPE = "SliceCompile"

	ICEBUILDER_NUGET_PACKAGE = "zeroc.icebuilder.msbuild"
	ICE_NET_NUGET_PACKAGE    = "zeroc.ice.net"
)

// Property names, the legacy spelling is rewritten by the project upgrade.
const (
	PROPERTY_OUTPUT_DIR          = "SliceCompileOutputDir"
	PROPERTY_HEADER_OUTPUT_DIR   = "SliceCompileHeaderOutputDir"
	PROPERTY_INCLUDE_DIRECTORIES = "SliceCompileIncludeDirectories"
	PROPERTY_ADDITIONAL_OPTIONS  = "SliceCompileAdditionalOptions"
	PROPERTY_SOURCE_EXT          = "SliceCompileSourceExt"
	PROPERTY_HEADER_EXT          = "SliceCompileHeaderExt"

	PROPERTY_ICE_ASSEMBLIES_DIR = "IceAssembliesDir"
)

var LegacyPropertyNames = map[string]string{
	"IceBuilderOutputDir":          PROPERTY_OUTPUT_DIR,
	"IceBuilderHeaderOutputDir":    PROPERTY_HEADER_OUTPUT_DIR,
	"IceBuilderIncludeDirectories": PROPERTY_INCLUDE_DIRECTORIES,
	"IceBuilderAdditionalOptions":  PROPERTY_ADDITIONAL_OPTIONS,
	"IceBuilderSourceExt":          PROPERTY_SOURCE_EXT,
	"IceBuilderHeaderExt":          PROPERTY_HEADER_EXT,
}

// Macros used by the collision checker, evaluated per configuration.
const (
	MACRO_OUTPUT_DIR        = "$(" + PROPERTY_OUTPUT_DIR + ")"
	MACRO_HEADER_OUTPUT_DIR = "$(" + PROPERTY_HEADER_OUTPUT_DIR + ")"
	MACRO_ASSEMBLIES_DIR    = "$(" + PROPERTY_ICE_ASSEMBLIES_DIR + ")"
)

// Assemblies referenced by C# projects which are shipped with Ice.
var IceAssemblyNames = []string{
	"Ice",
	"Glacier2",
	"IceBox",
	"IceDiscovery",
	"IceGrid",
	"IceLocatorDiscovery",
	"IcePatch2",
	"IceSSL",
	"IceStorm",
}

// Project type GUIDs found in solution files.
const (
	CPP_PROJECT_GUID          = "{8BC9CEB8-8B4A-11D0-8D11-00A0C91BC942}"
	CPP_STOREAPP_PROJECT_GUID = "{BC8A1FFA-BEE3-4634-8014-F334798102B3}"
	CSHARP_PROJECT_GUID       = "{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}"
	UNLOADED_PROJECT_GUID     = "{67294A52-A4F0-11D2-AA88-00C04F688DDE}"
	SOLUTION_FOLDER_GUID      = "{2150E333-8FDC-42A3-9474-1A3956D46DE8}"

	// project flavor registered by legacy IceBuilder installs
	ICEBUILDER_PROJECT_FLAVOR_GUID = "{3C53C28F-DC44-46B0-8B85-0C96B85B2042}"
)
