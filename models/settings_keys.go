package models

// GlobalSettingsKey is the reserved store key holding the GlobalSettings record.
// Every other key in the store is a specificity key holding a SiteOverride.
const GlobalSettingsKey = "globalSettings"

// StyleElementID is the id of the single managed <style> element.
const StyleElementID = "wbStyle"
